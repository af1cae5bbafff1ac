package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type UsuarioHandler struct {
	usuarioService *service.UsuarioService
	logger         *zap.Logger
}

func NewUsuarioHandler(usuarioService *service.UsuarioService, logger *zap.Logger) *UsuarioHandler {
	return &UsuarioHandler{usuarioService: usuarioService, logger: logger}
}

func (h *UsuarioHandler) List(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarioService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list usuarios", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, usuarios)
}

func (h *UsuarioHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}

	usuario, err := h.usuarioService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("failed to get usuario", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	respondData(w, http.StatusOK, usuario)
}

func (h *UsuarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	usuario, err := h.usuarioService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "El email ya está registrado")
		case errors.Is(err, service.ErrRolNotFound):
			respondError(w, http.StatusBadRequest, "Rol no válido")
		default:
			h.logger.Error("failed to create usuario", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusCreated, "Usuario creado exitosamente", usuario)
}

func (h *UsuarioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}

	var req domain.UpdateUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	usuario, err := h.usuarioService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "El email ya está registrado")
		case errors.Is(err, service.ErrRolNotFound):
			respondError(w, http.StatusBadRequest, "Rol no válido")
		default:
			h.logger.Error("failed to update usuario", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusOK, "Usuario actualizado exitosamente", usuario)
}

func (h *UsuarioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}

	if err := h.usuarioService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.logger.Error("failed to delete usuario", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondMessage(w, http.StatusOK, "Usuario eliminado exitosamente")
}

func (h *UsuarioHandler) AsignarSucursales(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}

	var req domain.AsignarSucursalesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	// An empty array revokes everything; a missing field is rejected
	if req.Sucursales == nil {
		respondError(w, http.StatusBadRequest, "Debe proporcionar un listado de sucursales")
		return
	}

	sucursales, err := h.usuarioService.AsignarSucursales(r.Context(), id, req.Sucursales)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, service.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Una o más sucursales no existen")
		default:
			h.logger.Error("failed to assign sucursales", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondDataMessage(w, http.StatusOK, "Sucursales asignadas exitosamente", sucursales)
}

func (h *UsuarioHandler) CambiarPassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}

	var req domain.CambiarPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.usuarioService.CambiarPassword(r.Context(), id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, service.ErrPermissionDenied):
			respondError(w, http.StatusForbidden, "No tiene permiso para cambiar esta contraseña")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, "La contraseña actual es incorrecta")
		default:
			h.logger.Error("failed to change password", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Contraseña actualizada exitosamente")
}
