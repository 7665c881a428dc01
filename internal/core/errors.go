package core

import "errors"

// Error codes for domain errors carried to the wire.
const (
	ErrCodeAuthRequired       = "auth_required"
	ErrCodeBadRequest         = "bad_request"
	ErrCodePersistenceFailure = "persistence_failed"
)

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrBadRequest         = errors.New("bad request")
	ErrPersistenceFailure = errors.New("persistence failed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
