package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type CatalogoHandler struct {
	catalogoService *service.CatalogoService
	logger          *zap.Logger
}

func NewCatalogoHandler(catalogoService *service.CatalogoService, logger *zap.Logger) *CatalogoHandler {
	return &CatalogoHandler{catalogoService: catalogoService, logger: logger}
}

func (h *CatalogoHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.catalogoService.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("failed to list roles", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, roles)
}

func (h *CatalogoHandler) ListTiposSierra(w http.ResponseWriter, r *http.Request) {
	tipos, err := h.catalogoService.ListTiposSierra(r.Context())
	if err != nil {
		h.logger.Error("failed to list tipos_sierra", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, tipos)
}

func (h *CatalogoHandler) CreateTipoSierra(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTipoSierraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tipo, err := h.catalogoService.CreateTipoSierra(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create tipo_sierra", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondDataMessage(w, http.StatusCreated, "Tipo de sierra creado exitosamente", tipo)
}

func (h *CatalogoHandler) UpdateTipoSierra(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de tipo de sierra inválido")
		return
	}

	var req domain.UpdateTipoSierraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tipo, err := h.catalogoService.UpdateTipoSierra(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Tipo de sierra no encontrado")
			return
		}
		h.logger.Error("failed to update tipo_sierra", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondDataMessage(w, http.StatusOK, "Tipo de sierra actualizado exitosamente", tipo)
}

func (h *CatalogoHandler) ListEstadosSierra(w http.ResponseWriter, r *http.Request) {
	estados, err := h.catalogoService.ListEstadosSierra(r.Context())
	if err != nil {
		h.logger.Error("failed to list estados_sierra", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, estados)
}

func (h *CatalogoHandler) ListTiposAfilado(w http.ResponseWriter, r *http.Request) {
	tipos, err := h.catalogoService.ListTiposAfilado(r.Context())
	if err != nil {
		h.logger.Error("failed to list tipos_afilado", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, tipos)
}
