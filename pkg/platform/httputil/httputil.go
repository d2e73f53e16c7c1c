// Package httputil writes the JSON response envelope shared by every route:
//
//	{"statusCode":200,"data":{...},"message":"...","success":true}
//
// Failures use the same shape with success=false, data=null and an errors
// list that carries field-level detail for validation failures.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "roster/pkg/domain-errors"
)

// Response is the success envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	StatusCode int          `json:"statusCode"`
	Data       any          `json:"data"`
	Message    string       `json:"message"`
	Success    bool         `json:"success"`
	Errors     []FieldError `json:"errors"`
}

type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const msgInternal = "internal server error"

// WriteJSON writes a success envelope around data.
func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// WriteError writes a failure envelope. Coded errors keep their message;
// anything else is reported as an internal error without detail.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, msgInternal)
	}
	status := StatusFor(de.Code)
	message := de.Message
	if message == "" {
		message = http.StatusText(status)
	}
	write(w, status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors: []FieldError{{
			Field:   de.Field,
			Code:    string(de.Code),
			Message: message,
		}},
	})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
