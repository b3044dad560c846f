package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/chatimage/backend/internal/apperrors"
	"github.com/chatimage/backend/internal/middlewares"
	"github.com/chatimage/backend/internal/models"
	"go.uber.org/zap"
)

// errRequestTooLarge is returned by decodeJSON when the body exceeds the size limit
var errRequestTooLarge = errors.New("request body too large")

// BaseHandler provides common handler functionality
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.MessageResponse{Success: false, Message: message})
}

// respondServiceError maps a service error to its HTTP status.
// Unknown and store errors are logged with detail and reported as a generic 500.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := zap.String("request_id", middlewares.GetRequestID(r.Context()))

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		h.respondError(w, http.StatusBadRequest, apperrors.PublicMessage(err, "invalid request"))
	case errors.Is(err, apperrors.ErrConflict):
		h.respondError(w, http.StatusConflict, apperrors.PublicMessage(err, "conflict"))
	case errors.Is(err, apperrors.ErrAuth):
		h.respondError(w, http.StatusUnauthorized, apperrors.PublicMessage(err, "invalid credentials"))
	case errors.Is(err, apperrors.ErrUpstream):
		h.logger.Warn("upstream request failed", requestID, zap.Error(err))
		h.respondError(w, http.StatusBadGateway, apperrors.PublicMessage(err, "upstream service unavailable"))
	default:
		h.logger.Error("internal error", requestID, zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes exactly one JSON object into dst, rejecting unknown fields and trailing data
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errRequestTooLarge
		}
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}

// readRequest decodes the request body into dst and writes the error response on failure.
// It returns false when the handler must stop.
func (h *BaseHandler) readRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		if errors.Is(err, errRequestTooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.logger.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
