package app

import (
	"fmt"
	"time"

	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/input"
	"github.com/smazurov/gpiosample/internal/reactor"
)

// Config holds the runtime settings of the application.
type Config struct {
	// Identity overrides board detection when set.
	Identity string
	// IdentityPath is the pseudo-file holding the machine name.
	IdentityPath string
	// TableFile adds or overrides boards.
	TableFile string

	Driver     string
	InputModel input.Model

	PollTimeout       time.Duration
	ReleasePollPeriod time.Duration
	ShutdownGrace     time.Duration
	InboxSize         int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Driver:            gpio.DriverAuto,
		InputModel:        input.ModelAuto,
		PollTimeout:       input.DefaultPollTimeout,
		ReleasePollPeriod: reactor.DefaultReleasePollPeriod,
		ShutdownGrace:     input.DefaultShutdownGrace,
		InboxSize:         reactor.DefaultInboxSize,
	}
}

// ParseDurations fills the duration fields from their string form, as
// they arrive from flags, env vars and TOML. Empty strings keep the
// current value.
func (c *Config) ParseDurations(pollTimeout, releasePoll, grace string) error {
	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"gpio.poll_timeout", pollTimeout, &c.PollTimeout},
		{"gpio.release_poll_period", releasePoll, &c.ReleasePollPeriod},
		{"gpio.shutdown_grace", grace, &c.ShutdownGrace},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil || parsed <= 0 {
			return &ConfigurationError{
				Code:    ErrCodeBadConfig,
				Message: fmt.Sprintf("invalid %s %q", d.name, d.value),
				Cause:   err,
			}
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Driver {
	case "", gpio.DriverAuto, gpio.DriverPeriph, gpio.DriverCdev, gpio.DriverSim:
	default:
		return &ConfigurationError{Code: ErrCodeBadConfig, Message: fmt.Sprintf("unknown gpio driver %q", c.Driver)}
	}
	switch c.InputModel {
	case "", input.ModelAuto, input.ModelPolling, input.ModelListener:
	default:
		return &ConfigurationError{Code: ErrCodeBadConfig, Message: fmt.Sprintf("unknown input model %q", c.InputModel)}
	}
	return nil
}
