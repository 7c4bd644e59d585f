package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeError maps service errors to status codes. Anything unrecognized is
// logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "validation",
			Message: ve.Message,
			Field:   ve.Field,
		}})
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrVerificationNotFound),
		errors.Is(err, repository.ErrFileNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrGoalAlreadyCompleted),
		errors.Is(err, offline.ErrFlushInProgress):
		writeErrorCode(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrUploadsDisabled):
		writeErrorCode(w, http.StatusNotImplemented, "uploads_disabled", err.Error())
	case apperr.IsStoreUnavailable(err):
		slog.Warn("store unavailable", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		w.Header().Set("Retry-After", "5")
		writeErrorCode(w, http.StatusServiceUnavailable, "store_unavailable", "store temporarily unavailable")
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeErrorCode(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decodeJSON reads a single JSON object from the body. Decode failures
// come back as validation errors on field "body".
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return apperr.Validation("body", "request body is empty")
	}
	if err != nil {
		return apperr.Validation("body", "invalid JSON: %v", err)
	}
	return nil
}
