package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler funnels failures through respondError, which:
//  1. Logs the technical error with the request ID for correlation
//  2. Maps the core error taxonomy to an HTTP status
//  3. Writes a JSON body, including field-level detail when the error
//     carries it (validation failures, structured remote errors)

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/catalogkit/skuadmin/internal/catalog"
	"github.com/catalogkit/skuadmin/internal/importer"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []catalog.FieldError `json:"fields,omitempty"`
}

// respondError logs the technical error and writes the mapped JSON
// response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// mapError translates the core error taxonomy into an HTTP status and
// response body.
func mapError(err error) (int, ErrorResponse) {
	var verrs catalog.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]catalog.FieldError, len(verrs))
		for i, ve := range verrs {
			fields[i] = catalog.FieldError{Path: ve.Field, Message: ve.Message}
		}
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: fields}
	}

	var remote *catalog.RemoteError
	if errors.As(err, &remote) {
		if remote.HasFieldErrors() {
			return http.StatusBadGateway, ErrorResponse{Error: remote.Message, Fields: remote.Fields}
		}
		return http.StatusBadGateway, ErrorResponse{Error: remote.Message}
	}

	var fetch *catalog.FetchError
	if errors.As(err, &fetch) {
		return http.StatusBadGateway, ErrorResponse{Error: fetch.Error()}
	}

	var stale *catalog.StaleOperationError
	if errors.As(err, &stale) {
		return http.StatusConflict, ErrorResponse{Error: stale.Error()}
	}

	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, ErrorResponse{Error: notFound.Error()}
	}

	var submit *importer.TaskSubmissionError
	if errors.As(err, &submit) {
		return http.StatusBadGateway, ErrorResponse{Error: submit.Error()}
	}

	switch {
	case errors.Is(err, catalog.ErrEditInProgress),
		errors.Is(err, catalog.ErrCommitInFlight):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	case errors.Is(err, catalog.ErrNoActiveSession):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
}

// writeError writes a bare JSON error message with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
