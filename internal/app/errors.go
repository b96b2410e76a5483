package app

import (
	"errors"
	"fmt"
)

// Configuration error codes.
const (
	ErrCodeUnknownBoard    = "UNKNOWN_BOARD"
	ErrCodeBadConfig       = "BAD_CONFIG"
	ErrCodeLineUnavailable = "LINE_UNAVAILABLE"
)

// ErrNotRunning is returned by Stop when the application is not running.
var ErrNotRunning = errors.New("application not running")

// ConfigurationError is a fatal startup problem: the board is unknown, the
// settings are unusable or a GPIO line cannot be had. No GPIO line is held
// when it is returned.
type ConfigurationError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
