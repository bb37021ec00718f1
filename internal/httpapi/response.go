package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ecom-auditor/internal/profit"
)

type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Status string       `json:"status"`
	Error  errorPayload `json:"error"`
}

// internalErrorBody is sent when a payload cannot be encoded.
const internalErrorBody = `{"status":"error","error":{"code":"internal_error","message":"failed to encode response"}}` + "\n"

// writeJSON encodes payload before the header goes out, so an encoding
// failure still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, internalErrorBody)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message, requestID string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: errorPayload{Code: code, Message: message, RequestID: requestID}})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
}

func mapDomainError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, profit.ErrUnknownPlatform):
		return http.StatusBadRequest, "unknown_platform"
	case errors.Is(err, profit.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field"
	case errors.Is(err, profit.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
