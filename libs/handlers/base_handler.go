package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

// Generic messages returned when an error carries no public text
const (
	MessageInternal     = "Erreur interne du serveur"
	MessageInvalidBody  = "Corps de requête invalide"
	MessageUnauthorized = "Authentification requise"
	MessageForbidden    = "Accès refusé"
	MessageNotFound     = "Ressource non trouvée"
	MessageConflict     = "Conflit avec l'état actuel de la ressource"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// ValidationErrorResponse is the body of a 400 response caused by invalid input
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"message": message})
}

// RespondServiceError maps an error returned by a service to an HTTP response
//
// Classified errors keep their public message; anything unclassified is logged and hidden behind a 500.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		h.RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Message: validationErr.Message,
			Errors:  validationErr.Fields,
		})
		return
	}

	status, fallback := http.StatusInternalServerError, MessageInternal
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, fallback = http.StatusBadRequest, MessageInvalidBody
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, fallback = http.StatusUnauthorized, MessageUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status, fallback = http.StatusForbidden, MessageForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		status, fallback = http.StatusNotFound, MessageNotFound
	case errors.Is(err, apperrors.ErrConflict):
		status, fallback = http.StatusConflict, MessageConflict
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, status, MessageInternal)
		return
	}

	message := apperrors.PublicMessage(err)
	if message == "" {
		message = fallback
	}
	h.RespondError(w, status, message)
}

// DecodeJSON decodes the request body into dst, answering 400 on malformed input
//
// Returns false when a response has already been written.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			h.RespondServiceError(w, r, validationErr)
			return false
		}
		h.RespondError(w, http.StatusBadRequest, MessageInvalidBody)
		return false
	}
	return true
}

// PathID parses a positive integer URL parameter
//
// A malformed or non-positive id cannot name a stored resource, so it is answered
// like a missing one: 404 with notFoundMessage, or MessageNotFound when empty.
// Returns false when a response has already been written.
func (h *BaseHandler) PathID(w http.ResponseWriter, r *http.Request, name, notFoundMessage string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		if notFoundMessage == "" {
			notFoundMessage = MessageNotFound
		}
		h.RespondError(w, http.StatusNotFound, notFoundMessage)
		return 0, false
	}
	return id, true
}

// QueryInt reads an integer query parameter, falling back to def when absent or not positive and capping at max when max > 0
func QueryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
