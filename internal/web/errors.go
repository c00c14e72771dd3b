package web

// errors.go writes every error response of the API.
//
// The technical error is logged with the request id; the client gets the
// mapped message and code from grants.MapError.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/grantsheet/internal/grants"
	"github.com/JonMunkholm/grantsheet/internal/logging"
)

var (
	errNoFile      = errors.New("no file provided")
	errRateLimited = errors.New("rate limit exceeded")
	errBadGrantID  = errors.New("invalid grant_id")
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a sanitized JSON error with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := grants.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	// Errors raised by the handlers themselves carry a safe message already.
	message := userMsg.Message
	if userMsg.Code == "ERR000" && isLocalError(err) {
		message = err.Error()
	}

	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   message,
		Message: message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

func isLocalError(err error) bool {
	return errors.Is(err, errBadGrantID) || errors.Is(err, errRateLimited)
}

// writeJSON writes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are sent; an encode failure can only be logged.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
