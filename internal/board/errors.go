package board

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeUnknownBoard = "UNKNOWN_BOARD"
	ErrCodeNoIdentity   = "NO_IDENTITY"
	ErrCodeInvalidTable = "INVALID_TABLE"
)

// Sentinels matched with errors.Is.
var (
	ErrUnknownBoard = errors.New("unknown board")
	ErrNoIdentity   = errors.New("board identity not available")
)

// Error represents a board resolution failure.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new board error.
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
