package gpio

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeHardwareIO  = "HARDWARE_IO"
	ErrCodeUnsupported = "UNSUPPORTED"
)

// Error is a failed driver call on a single line.
type Error struct {
	Code  string
	Op    string
	Line  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s line %s: %v", e.Code, e.Op, e.Line, e.Cause)
	}
	return fmt.Sprintf("%s: %s line %s", e.Code, e.Op, e.Line)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func ioError(op string, spec LineSpec, cause error) *Error {
	return &Error{Code: ErrCodeHardwareIO, Op: op, Line: spec.String(), Cause: cause}
}

// IsHardwareIO reports whether err came from a failed line operation.
func IsHardwareIO(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Code == ErrCodeHardwareIO
}

// ErrClosed is returned by operations on a closed line.
var ErrClosed = errors.New("line closed")

// ErrNoController means the host exposes no GPIO interface to probe.
var ErrNoController = errors.New("no GPIO controller found")
