package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Code es el identificador estable (machine-readable) que ve el cliente.
type Code string

const (
	CodeDuplicateEmail     Code = "duplicate_email"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeInvalidToken       Code = "invalid_token"
	CodeTokenExpired       Code = "token_expired"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeValidation         Code = "validation_error"
	CodePayloadTooLarge    Code = "payload_too_large"
	CodeRateLimited        Code = "rate_limited"
	CodeRouteNotFound      Code = "route_not_found"
	CodeServerFault        Code = "server_fault"
)

// Error es un error tipado del dominio. Dos *Error con el mismo Code
// se consideran equivalentes para errors.Is.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap devuelve una copia de e con la causa adjunta (no se expone al cliente).
func Wrap(e *Error, cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extrae el código; errores desconocidos son server_fault.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeServerFault
}

func StatusOf(code Code) int {
	switch code {
	case CodeDuplicateEmail, CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidToken, CodeTokenExpired, CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeRouteNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type body struct {
	Error   Code   `json:"error"`
	Message string `json:"message"`
}

// Write serializa err como {"error": code, "message": msg}.
// Los errores no tipados nunca filtran su texto interno.
func Write(w http.ResponseWriter, err error) {
	code := CodeOf(err)
	msg := "internal error"

	var e *Error
	if errors.As(err, &e) && code != CodeServerFault {
		msg = e.Message
	}

	WriteCode(w, code, msg)
}

func WriteCode(w http.ResponseWriter, code Code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusOf(code))
	_ = json.NewEncoder(w).Encode(body{Error: code, Message: msg})
}
