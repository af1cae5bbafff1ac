package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type ClienteHandler struct {
	clienteService *service.ClienteService
	logger         *zap.Logger
}

func NewClienteHandler(clienteService *service.ClienteService, logger *zap.Logger) *ClienteHandler {
	return &ClienteHandler{clienteService: clienteService, logger: logger}
}

func (h *ClienteHandler) List(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.clienteService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clientes", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, clientes)
}

func (h *ClienteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	cliente, err := h.clienteService.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este cliente")
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
		default:
			h.logger.Error("failed to get cliente", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, cliente)
}

func (h *ClienteHandler) Sucursales(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	sucursales, err := h.clienteService.Sucursales(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este cliente")
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
		default:
			h.logger.Error("failed to list sucursales de cliente", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, sucursales)
}

func (h *ClienteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cliente, err := h.clienteService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create cliente", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondDataMessage(w, http.StatusCreated, "Cliente creado exitosamente", cliente)
}

func (h *ClienteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	var req domain.CreateClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cliente, err := h.clienteService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
			return
		}
		h.logger.Error("failed to update cliente", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondDataMessage(w, http.StatusOK, "Cliente actualizado exitosamente", cliente)
}

func (h *ClienteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	if err := h.clienteService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
		case errors.Is(err, service.ErrHasDependents):
			respondError(w, http.StatusBadRequest, "No se puede eliminar el cliente porque tiene sucursales asociadas")
		default:
			h.logger.Error("failed to delete cliente", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Cliente eliminado exitosamente")
}
