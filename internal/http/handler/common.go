package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/austech/sigo-api/internal/domain"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondData wraps a payload in the success envelope
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, domain.DataResponse{Success: true, Data: data})
}

// respondMessage sends a success envelope carrying only a message
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.MessageResponse{Success: true, Message: message})
}

// respondDataMessage sends a success envelope with message and payload
func respondDataMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, domain.DataMessageResponse{Success: true, Message: message, Data: data})
}

// respondError sends a failure envelope
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.ErrorResponse{Success: false, Message: message})
}

// respondValidationError sends a failure envelope with per-field messages
func respondValidationError(w http.ResponseWriter, err error) {
	fieldErrors := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			fieldErrors[toJSONFieldName(fe.Field())] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
		Success: false,
		Message: "Datos de entrada inválidos",
		Errors:  fieldErrors,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", toJSONFieldName(fe.Field()))
	case "email":
		return "Debe ser un email válido"
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
	case "eqfield":
		return "Las contraseñas no coinciden"
	default:
		return "Valor inválido"
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// parseID reads a numeric id route parameter
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
