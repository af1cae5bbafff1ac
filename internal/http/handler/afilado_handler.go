package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
	"github.com/austech/sigo-api/internal/service"
)

type AfiladoHandler struct {
	afiladoService *service.AfiladoService
	logger         *zap.Logger
}

func NewAfiladoHandler(afiladoService *service.AfiladoService, logger *zap.Logger) *AfiladoHandler {
	return &AfiladoHandler{afiladoService: afiladoService, logger: logger}
}

// parseFilters reads the optional query parameters of the listing.
// Dates use YYYY-MM-DD; hasta is inclusive through end of day.
func parseFilters(r *http.Request) (repository.AfiladoFilters, error) {
	var filters repository.AfiladoFilters
	q := r.URL.Query()

	if desde := q.Get("desde"); desde != "" {
		t, err := time.Parse("2006-01-02", desde)
		if err != nil {
			return filters, fmt.Errorf("invalid desde: %w", err)
		}
		filters.Desde = &t
	}
	if hasta := q.Get("hasta"); hasta != "" {
		t, err := time.Parse("2006-01-02", hasta)
		if err != nil {
			return filters, fmt.Errorf("invalid hasta: %w", err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filters.Hasta = &end
	}
	if q.Get("pendientes") == "true" {
		filters.Pendientes = true
	}
	if s := q.Get("sucursal_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filters, fmt.Errorf("invalid sucursal_id: %w", err)
		}
		filters.SucursalID = &id
	}
	if c := q.Get("cliente_id"); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return filters, fmt.Errorf("invalid cliente_id: %w", err)
		}
		filters.ClienteID = &id
	}
	return filters, nil
}

func (h *AfiladoHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Parámetros de filtro inválidos")
		return
	}

	afilados, err := h.afiladoService.List(r.Context(), filters)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a estos afilados")
			return
		}
		h.logger.Error("failed to list afilados", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, afilados)
}

// ListPendientes returns the open cycles oldest first, the order the
// workshop works them.
func (h *AfiladoHandler) ListPendientes(w http.ResponseWriter, r *http.Request) {
	afilados, err := h.afiladoService.ListPendientes(r.Context())
	if err != nil {
		h.logger.Error("failed to list afilados pendientes", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, afilados)
}

func (h *AfiladoHandler) ListBySucursal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
		return
	}

	afilados, err := h.afiladoService.ListBySucursal(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sucursal no encontrada")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a esta sucursal")
		default:
			h.logger.Error("failed to list afilados by sucursal", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, afilados)
}

func (h *AfiladoHandler) ListByCliente(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de cliente inválido")
		return
	}

	afilados, err := h.afiladoService.ListByCliente(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Cliente no encontrado")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este cliente")
		default:
			h.logger.Error("failed to list afilados by cliente", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, afilados)
}

func (h *AfiladoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de afilado inválido")
		return
	}

	afilado, err := h.afiladoService.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Afilado no encontrado")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este afilado")
		default:
			h.logger.Error("failed to get afilado", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, afilado)
}

func (h *AfiladoHandler) ListBySierra(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de sierra inválido")
		return
	}

	afilados, err := h.afiladoService.ListBySierra(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sierra no encontrada")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a esta sierra")
		default:
			h.logger.Error("failed to list afilados by sierra", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}
	respondData(w, http.StatusOK, afilados)
}

func (h *AfiladoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAfiladoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	afilado, err := h.afiladoService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sierra no encontrada")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para registrar afilados en esta sucursal")
		case errors.Is(err, service.ErrSierraObsoleta):
			respondError(w, http.StatusBadRequest, "No se puede registrar un afilado para una sierra obsoleta")
		case errors.Is(err, service.ErrConflict):
			respondError(w, http.StatusBadRequest, "La sierra ya tiene un afilado pendiente")
		case errors.Is(err, service.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Tipo de afilado no válido")
		default:
			h.logger.Error("failed to create afilado", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusCreated, "Afilado registrado exitosamente", afilado)
}

func (h *AfiladoHandler) RegistrarSalida(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de afilado inválido")
		return
	}

	afilado, err := h.afiladoService.RegistrarSalida(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Afilado no encontrado")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a este afilado")
		case errors.Is(err, service.ErrSalidaRegistrada):
			respondError(w, http.StatusNotFound, "Afilado no encontrado o ya tiene salida registrada")
		default:
			h.logger.Error("failed to register salida", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusOK, "Salida registrada exitosamente", afilado)
}

func (h *AfiladoHandler) SalidaMasiva(w http.ResponseWriter, r *http.Request) {
	var req domain.SalidaMasivaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	count, err := h.afiladoService.SalidaMasiva(r.Context(), req.AfiladoIDs)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No se encontraron afilados pendientes para actualizar")
			return
		}
		h.respondBatchError(w, err, "failed to register salida masiva")
		return
	}

	respondDataMessage(w, http.StatusOK,
		fmt.Sprintf("Salida registrada para %d afilados", count),
		map[string]interface{}{"actualizados": count})
}

func (h *AfiladoHandler) UltimoAfiladoMasivo(w http.ResponseWriter, r *http.Request) {
	var req domain.UltimoAfiladoMasivoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.afiladoService.UltimoAfiladoMasivo(r.Context(), req.AfiladoIDs)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No se encontraron afilados")
			return
		}
		h.respondBatchError(w, err, "failed to apply ultimo afilado masivo")
		return
	}

	respondDataMessage(w, http.StatusOK, "Último afilado aplicado exitosamente", result)
}

func (h *AfiladoHandler) respondBatchError(w http.ResponseWriter, err error, logMsg string) {
	var missing *service.BatchMissingError
	var final *service.BatchAlreadyFinalError
	var scope *service.BatchScopeError

	switch {
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("No se encontraron algunos afilados: %v", missing.IDs))
	case errors.As(err, &final):
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Algunos afilados ya están marcados como último afilado: %v", final.IDs))
	case errors.As(err, &scope):
		respondError(w, http.StatusForbidden,
			fmt.Sprintf("No tiene permiso para el afilado %d", scope.AfiladoID))
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
