//go:build !linux

package gpio

import (
	"errors"

	"github.com/smazurov/gpiosample/internal/logging"
)

const cdevSupported = false

func newCdev(_ logging.Logger) (Driver, error) {
	return nil, &Error{
		Code:  ErrCodeUnsupported,
		Op:    "open",
		Line:  "-",
		Cause: errors.New("GPIO character device is only available on Linux"),
	}
}
