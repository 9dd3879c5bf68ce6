package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes clients branch on. save_failed keeps the user on the current
// step with an inline banner; load_failed is a full-page error.
const (
	CodeValidation   = "validation_failed"
	CodeNotFound     = "not_found"
	CodeSaveFailed   = "save_failed"
	CodeLoadFailed   = "load_failed"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeInternal     = "internal"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	RequestID string    `json:"request_id"`
	Error     errorBody `json:"error"`
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return "req_" + uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID(r),
		Error:     errorBody{Code: code, Message: message, Details: details},
	})
}

// readJSON decodes a request body, rejecting unknown fields.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badBody(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, CodeValidation, "invalid request body", err.Error())
}

// writeServiceError maps the domain failure kinds onto HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeError(w, r, http.StatusBadRequest, CodeValidation, "some fields are invalid", verrs)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, CodeNotFound, "not found", nil)
	case errors.Is(err, domain.ErrPersistence):
		logger.Error("save failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, CodeSaveFailed, "your changes could not be saved, please try again", nil)
	case errors.Is(err, domain.ErrRetrieval):
		logger.Error("load failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, CodeLoadFailed, "this page could not be loaded", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	default:
		logger.Error("unclassified error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}

// boolQuery reads ?name=true; anything unparsable is false.
func boolQuery(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func intQuery(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
