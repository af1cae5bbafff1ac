package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type SucursalHandler struct {
	sucursalService *service.SucursalService
	logger          *zap.Logger
}

func NewSucursalHandler(sucursalService *service.SucursalService, logger *zap.Logger) *SucursalHandler {
	return &SucursalHandler{sucursalService: sucursalService, logger: logger}
}

func (h *SucursalHandler) List(w http.ResponseWriter, r *http.Request) {
	sucursales, err := h.sucursalService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sucursales", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, sucursales)
}

func (h *SucursalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
		return
	}

	sucursal, err := h.sucursalService.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a esta sucursal")
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sucursal no encontrada")
		default:
			h.logger.Error("failed to get sucursal", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, sucursal)
}

func (h *SucursalHandler) Vinculadas(w http.ResponseWriter, r *http.Request) {
	sucursales, err := h.sucursalService.Vinculadas(r.Context())
	if err != nil {
		h.logger.Error("failed to list sucursales vinculadas", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, sucursales)
}

func (h *SucursalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSucursalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sucursal, err := h.sucursalService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "El cliente indicado no existe")
			return
		}
		h.logger.Error("failed to create sucursal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondDataMessage(w, http.StatusCreated, "Sucursal creada exitosamente", sucursal)
}

func (h *SucursalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
		return
	}

	var req domain.CreateSucursalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sucursal, err := h.sucursalService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sucursal no encontrada")
		case errors.Is(err, service.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "El cliente indicado no existe")
		default:
			h.logger.Error("failed to update sucursal", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusOK, "Sucursal actualizada exitosamente", sucursal)
}

func (h *SucursalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
		return
	}

	if err := h.sucursalService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sucursal no encontrada")
		case errors.Is(err, service.ErrHasDependents):
			respondError(w, http.StatusBadRequest, "No se puede eliminar la sucursal porque tiene sierras registradas")
		default:
			h.logger.Error("failed to delete sucursal", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Sucursal eliminada exitosamente")
}
