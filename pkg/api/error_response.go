package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// NotFoundMessage is the error text the dashboard expects for missing posts
const NotFoundMessage = "Document not found"

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// writeStoreError maps a store error onto a status code and writes it
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		validationErr *domain.ValidationError
		connErr       *domain.ConnectionError
	)

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err),
	}

	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("rejected request", fields...)
		WriteJSONError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.logger.Info("post not found", fields...)
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   NotFoundMessage,
			Message: "no post matches the given id",
			Code:    http.StatusNotFound,
		})
	case errors.As(err, &connErr):
		h.logger.Error("store unavailable", fields...)
		WriteJSONError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.logger.Error("store operation failed", fields...)
		WriteJSONError(w, http.StatusInternalServerError, "Server error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
