package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// statusOf maps use case errors to HTTP status codes. Anything unknown is a
// store failure.
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPatientNotFound),
		errors.Is(err, usecase.ErrSubmissionNotFound),
		errors.Is(err, usecase.ErrUnknownSubmission):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNoSelection),
		errors.Is(err, usecase.ErrStaleSelection),
		errors.Is(err, usecase.ErrAnnotationLocked):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrNotEditable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// writeError writes err as a JSON error body with the mapped status
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		_ = errutil.Handle(ctx, err, "request failed")
	}
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}
