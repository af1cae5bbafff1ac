package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type SierraHandler struct {
	sierraService *service.SierraService
	logger        *zap.Logger
}

func NewSierraHandler(sierraService *service.SierraService, logger *zap.Logger) *SierraHandler {
	return &SierraHandler{sierraService: sierraService, logger: logger}
}

func (h *SierraHandler) List(w http.ResponseWriter, r *http.Request) {
	sierras, err := h.sierraService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sierras", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, sierras)
}

func (h *SierraHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sierra inválido")
		return
	}

	sierra, err := h.sierraService.GetByID(r.Context(), id)
	if err != nil {
		h.respondSierraError(w, err, "failed to get sierra")
		return
	}
	respondData(w, http.StatusOK, sierra)
}

func (h *SierraHandler) GetByCodigo(w http.ResponseWriter, r *http.Request) {
	codigo := chi.URLParam(r, "codigo")
	if codigo == "" {
		respondError(w, http.StatusBadRequest, "Código de barras inválido")
		return
	}

	sierra, err := h.sierraService.GetByCodigo(r.Context(), codigo)
	if err != nil {
		h.respondSierraError(w, err, "failed to get sierra by codigo")
		return
	}
	respondData(w, http.StatusOK, sierra)
}

func (h *SierraHandler) ListBySucursal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
		return
	}

	sierras, err := h.sierraService.ListBySucursal(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Sucursal no encontrada")
			return
		}
		h.logger.Error("failed to list sierras by sucursal", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, sierras)
}

func (h *SierraHandler) ListByCliente(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	sierras, err := h.sierraService.ListByCliente(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este cliente")
		default:
			h.logger.Error("failed to list sierras by cliente", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, sierras)
}

func (h *SierraHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSierraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sierra, err := h.sierraService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para registrar sierras en esta sucursal")
		case errors.Is(err, service.ErrCodigoTaken):
			respondError(w, http.StatusBadRequest, "Ya existe una sierra con este código")
		case errors.Is(err, service.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Sucursal o tipo de sierra no válidos")
		default:
			h.logger.Error("failed to create sierra", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusCreated, "Sierra registrada exitosamente", sierra)
}

func (h *SierraHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sierra inválido")
		return
	}

	var req domain.UpdateSierraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}

	sierra, err := h.sierraService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sierra no encontrada")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para modificar esta sierra")
		case errors.Is(err, service.ErrCodigoTaken):
			respondError(w, http.StatusBadRequest, "Ya existe una sierra con este código")
		case errors.Is(err, service.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Sucursal o tipo de sierra no válidos")
		default:
			h.logger.Error("failed to update sierra", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusOK, "Sierra actualizada exitosamente", sierra)
}

func (h *SierraHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sierra inválido")
		return
	}

	if err := h.sierraService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sierra no encontrada")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para eliminar esta sierra")
		case errors.Is(err, service.ErrHasDependents):
			respondError(w, http.StatusBadRequest, "No se puede eliminar la sierra porque tiene afilados registrados")
		default:
			h.logger.Error("failed to delete sierra", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Sierra eliminada exitosamente")
}

func (h *SierraHandler) respondSierraError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "Sierra no encontrada")
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, "No tiene permiso para acceder a esta sierra")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
