package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrDuplicateSubmission = errors.New("form already submitted")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrEmptyPatch          = errors.New("patch changes nothing")
)

// UnknownErrorMessage is shown when a failure carries no usable text.
const UnknownErrorMessage = "Erro desconhecido"

// BackendError is a failed call to the client/asset directory.
type BackendError struct {
	Op      string
	Status  int    // HTTP status; 0 when the request never got a response
	Message string // "mensagem" or "detalhes" from the response body
	Err     error
}

func (e *BackendError) Error() string {
	var b strings.Builder
	b.WriteString("backend ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is matches ErrBackendUnavailable for transport failures and 5xx answers.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable && (e.Status == 0 || e.Status >= 500)
}

// Describe picks the user-facing text for err: the backend's structured
// message, then the transport error text, then a generic fallback.
func Describe(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}
	var be *BackendError
	if errors.As(err, &be) {
		if be.Message != "" {
			return be.Message
		}
		if be.Err != nil && be.Err.Error() != "" {
			return be.Err.Error()
		}
		return UnknownErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// First returns the first message for field, or "".
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsFieldErrors returns the field errors carried by err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
