package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/session"
)

const (
	CodeInvalidRequest      = "invalid_request"
	CodeNotFound            = "not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeInternal            = "internal"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, coach.ErrInvalidRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, coach.ErrUpstreamUnavailable):
		return http.StatusInternalServerError, CodeUpstreamUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if code == CodeInternal {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, ErrorBody{Error: msg, Code: code})
}

func badRequest(reason string) error {
	return &coach.ValidationError{Field: "body", Reason: reason}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
