package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/schnell18/titra/internal/errors"
)

// envelope is the uniform response body of every gateway route.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Payload    interface{} `json:"payload,omitempty"`
}

func writeResponse(w http.ResponseWriter, status int, message string, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Message:    message,
		Payload:    payload,
	})
}

func writeError(w http.ResponseWriter, err error) {
	writeResponse(w, httpStatus(err), err.Error(), nil)
}

// httpStatus maps the application error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput, errors.ErrorTypeInvalidRange:
		return http.StatusBadRequest
	case errors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeRuleViolation:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeConfiguration:
		return http.StatusPreconditionFailed
	case errors.ErrorTypeTimerConflict:
		if appErr.Code == "NO_RUNNING_TIMER" {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
