package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
	}
	s.writeJSON(w, status, errorResponse{Code: code, Error: message(err)})
}

// message is the user-facing text of err, with the causes of wrapped
// errors appended.
func message(err error) string {
	msg := errors.UserMessage(err)
	if e, ok := err.(*errors.Error); ok && e.Cause != nil {
		msg += ": " + message(e.Cause)
	}
	return msg
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidPlacement,
		errors.ErrCodeInvalidSnapshot,
		errors.ErrCodeInvalidLayout,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidKey:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeBoardNotFound,
		errors.ErrCodeTargetNotFound,
		errors.ErrCodeWidgetNotFound:
		return http.StatusNotFound
	case errors.ErrCodePlacementRejected,
		errors.ErrCodeDragInProgress:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
