// Package response defines the uniform result value returned by every
// forum operation and written verbatim as the HTTP response body.
package response

import "net/http"

// Message tags.
const (
	TagOK                  = "Ok"
	TagCreated             = "Created"
	TagAccepted            = "Accepted"
	TagBadRequest          = "Bad_Request"
	TagUnauthorized        = "Unauthorized"
	TagForbidden           = "Forbidden"
	TagNotFound            = "Not_Found"
	TagConflict            = "Conflict"
	TagTooManyRequests     = "Too_Many_Requests"
	TagUnprocessableEntity = "Unprocessable_Entity"
	TagInternalServerError = "Internal_Server_Error"
)

// Default error messages.
const (
	DefaultBadRequest          = "The request contains validation errors"
	DefaultForbidden           = "This action requires additional permissions"
	DefaultNotFound            = "Resource is not found"
	DefaultConflict            = "Resource already exists"
	DefaultTooManyRequests     = "Too many requests, try again later"
	DefaultUnprocessableEntity = "Resource cannot be processed, try again later"
	DefaultInternalServerError = "Something went wrong"
)

// Envelope is built once per operation and never mutated afterwards.
type Envelope struct {
	StatusCode   int      `json:"statusCode"`
	Message      string   `json:"message"`
	ErrorMessage *string  `json:"errorMessage"`
	Fields       []string `json:"fields"`
	Payload      any      `json:"payload"`
}

// Success reports a 2xx status code.
func (e Envelope) Success() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// Error returns the error message or "" when none is set.
func (e Envelope) Error() string {
	if e.ErrorMessage == nil {
		return ""
	}
	return *e.ErrorMessage
}

func newEnvelope(code int, tag string) Envelope {
	return Envelope{StatusCode: code, Message: tag, Fields: []string{}}
}

func withError(e Envelope, msg []string, def string) Envelope {
	m := def
	if len(msg) > 0 && msg[0] != "" {
		m = msg[0]
	}
	e.ErrorMessage = &m
	return e
}

func withFields(e Envelope, fields []string) Envelope {
	if len(fields) > 0 {
		e.Fields = append([]string(nil), fields...)
	}
	return e
}

func OK(payload any) Envelope {
	e := newEnvelope(http.StatusOK, TagOK)
	e.Payload = payload
	return e
}

func Created(payload any) Envelope {
	e := newEnvelope(http.StatusCreated, TagCreated)
	e.Payload = payload
	return e
}

func Accepted() Envelope {
	return newEnvelope(http.StatusAccepted, TagAccepted)
}

// BadRequest carries the validation messages. An optional message replaces
// the default error message.
func BadRequest(fields []string, msg ...string) Envelope {
	e := withError(newEnvelope(http.StatusBadRequest, TagBadRequest), msg, DefaultBadRequest)
	return withFields(e, fields)
}

func Unauthorized(msg string) Envelope {
	return withError(newEnvelope(http.StatusUnauthorized, TagUnauthorized), []string{msg}, "")
}

func Forbidden(msg ...string) Envelope {
	return withError(newEnvelope(http.StatusForbidden, TagForbidden), msg, DefaultForbidden)
}

func NotFound(msg ...string) Envelope {
	return withError(newEnvelope(http.StatusNotFound, TagNotFound), msg, DefaultNotFound)
}

func Conflict(msg ...string) Envelope {
	return withError(newEnvelope(http.StatusConflict, TagConflict), msg, DefaultConflict)
}

func TooManyRequests(msg ...string) Envelope {
	return withError(newEnvelope(http.StatusTooManyRequests, TagTooManyRequests), msg, DefaultTooManyRequests)
}

func UnprocessableEntity(msg string, fields ...string) Envelope {
	e := withError(newEnvelope(http.StatusUnprocessableEntity, TagUnprocessableEntity), []string{msg}, DefaultUnprocessableEntity)
	return withFields(e, fields)
}

func InternalServerError(msg ...string) Envelope {
	return withError(newEnvelope(http.StatusInternalServerError, TagInternalServerError), msg, DefaultInternalServerError)
}
