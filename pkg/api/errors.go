package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
)

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// statusFor maps a pipeline error to its HTTP status and response detail.
func statusFor(err error) (int, string) {
	msg := errs.UserMessage(err)
	switch code := errs.GetCode(err); {
	case errs.IsSchemaValidation(err):
		return http.StatusBadRequest, "Invalid input: " + msg
	case code == errs.ErrCodeUnsupportedNodeType:
		return http.StatusBadRequest, "Diagram contains unsupported components: " + msg
	case code == errs.ErrCodeGraphBuild:
		return http.StatusBadRequest, "Missing required element in diagram definition: " + msg
	case code == errs.ErrCodeInvalidInput:
		return http.StatusBadRequest, msg
	case code == errs.ErrCodeGeneration:
		return http.StatusBadGateway, "Error generating diagram: " + msg
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Error generating diagram: request timed out"
	default:
		return http.StatusInternalServerError, "Error generating diagram: " + msg
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	code := codeOrInternal(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "code", code, "error", err)
	}
	writeJSON(w, status, errorBody{Detail: detail, Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
