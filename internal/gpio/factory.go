package gpio

import (
	"fmt"
	"os"

	"github.com/smazurov/gpiosample/internal/logging"
)

// Driver names accepted by New.
const (
	DriverAuto   = "auto"
	DriverPeriph = "periph"
	DriverCdev   = "cdev"
	DriverSim    = "sim"
)

var (
	chardevProbePath = "/dev/gpiochip0"
	sysfsProbePath   = "/sys/class/gpio"
)

// New creates the named driver. "auto" probes the host for the character
// device first and sysfs next; a host with neither yields ErrNoController.
// The simulator is only used when asked for by name.
func New(name string, logger logging.Logger) (Driver, error) {
	if logger == nil {
		logger = logging.GetLogger("gpio")
	}
	if name == "" || name == DriverAuto {
		detected, err := probe()
		if err != nil {
			return nil, err
		}
		name = detected
		logger.Info("Detected GPIO driver", "driver", name)
	}

	switch name {
	case DriverCdev:
		return newCdev(logger)
	case DriverPeriph:
		return newPeriph(logger)
	case DriverSim:
		return NewSim(), nil
	default:
		return nil, fmt.Errorf("unknown GPIO driver %q", name)
	}
}

func probe() (string, error) {
	if _, err := os.Stat(chardevProbePath); err == nil && cdevSupported {
		return DriverCdev, nil
	}
	if _, err := os.Stat(sysfsProbePath); err == nil {
		return DriverPeriph, nil
	}
	return "", &Error{
		Code:  ErrCodeUnsupported,
		Op:    "probe",
		Line:  "*",
		Cause: fmt.Errorf("%w: neither %s nor %s exists", ErrNoController, chardevProbePath, sysfsProbePath),
	}
}
