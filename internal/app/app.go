// Package app wires board resolution, GPIO lines, the reactor loop and
// the input source into one start/stop lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/smazurov/gpiosample/internal/board"
	"github.com/smazurov/gpiosample/internal/display"
	"github.com/smazurov/gpiosample/internal/events"
	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/input"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
	"github.com/smazurov/gpiosample/internal/reactor"
	"github.com/smazurov/gpiosample/internal/systemd"
)

// Deps are the collaborators of an App. Every field is optional.
type Deps struct {
	// Driver is used instead of creating one from Config.Driver.
	Driver gpio.Driver
	// Table defaults to the built-in table merged with Config.TableFile.
	Table *board.Table
	// Sources default to board.DefaultSources.
	Sources []board.Source
	// Presenter receives display updates next to the model and the log.
	Presenter display.Presenter

	Bus      *events.Bus
	Metrics  *metrics.Metrics
	Clock    clockwork.Clock
	Notifier *systemd.Notifier
	Logger   logging.Logger
}

// App is the button/LED sample.
type App struct {
	cfg    Config
	deps   Deps
	logger logging.Logger
	model  *display.Model

	mu       sync.RWMutex
	state    State
	identity string
	profile  board.Profile
	driver   gpio.Driver
	led      gpio.Line
	button   gpio.Line
	reactor  *reactor.Reactor
	loop     *reactor.Loop
	source   input.Source
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// New creates an idle application.
func New(cfg Config, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = logging.GetLogger("app")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Notifier == nil {
		deps.Notifier = systemd.NewNotifier(nil)
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = input.DefaultShutdownGrace
	}
	return &App{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
		model:  display.NewModel(deps.Bus),
		state:  StateIdle,
	}
}

// Start resolves the board, opens the lines, resets the LED and begins
// reacting to the button. An unknown board yields a *ConfigurationError
// before any line is opened.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateRunning || a.state == StateStarting {
		return fmt.Errorf("application already %s", a.state)
	}
	a.state = StateStarting

	if err := a.start(ctx); err != nil {
		a.state = StateError
		return err
	}
	a.state = StateRunning
	return nil
}

func (a *App) start(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	profile, identity, err := a.resolve()
	if err != nil {
		return err
	}
	a.profile, a.identity = profile, identity
	a.logger.Info("Board resolved",
		"identity", identity,
		"board", profile.Name,
		"button", profile.ButtonSpec().String(),
		"led", profile.LEDSpec().String(),
		"polarity", string(profile.Polarity))

	driver := a.deps.Driver
	if driver == nil {
		driver, err = gpio.New(a.cfg.Driver, logging.GetLogger("gpio"))
		if err != nil {
			return lineUnavailable("no usable GPIO driver", err)
		}
	}
	a.driver = driver

	if err := a.openLines(); err != nil {
		a.closeLines()
		return err
	}

	var poller *reactor.ReleasePoller
	if profile.NeedsReleasePoll() {
		poller = reactor.NewReleasePoller(a.button, a.deps.Clock, a.cfg.ReleasePollPeriod)
		a.logger.Info("Button reports presses only, releases will be polled", "period", a.cfg.ReleasePollPeriod)
	}

	presenters := display.Multi{a.model, display.NewLogPresenter(nil)}
	if a.deps.Presenter != nil {
		presenters = append(presenters, a.deps.Presenter)
	}

	a.reactor = reactor.New(a.led, profile.Polarity, presenters, reactor.Options{
		Metrics: a.deps.Metrics,
		Bus:     a.deps.Bus,
		Poller:  poller,
	})
	a.reactor.Reset()
	presenters.ShowBoard(profile.BoardImage())

	a.loop = reactor.NewLoop(a.reactor, a.cfg.InboxSize, a.deps.Metrics, nil)

	source, err := input.New(a.button, a.cfg.InputModel, a.loop, input.Options{
		PollTimeout: a.cfg.PollTimeout,
		Metrics:     a.deps.Metrics,
	})
	if err != nil {
		a.closeLines()
		return fmt.Errorf("create input source: %w", err)
	}
	if err := source.Start(); err != nil {
		a.closeLines()
		return lineUnavailable("cannot watch the button line", err)
	}
	a.source = source

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.loopDone = make(chan struct{})
	go func() {
		defer close(a.loopDone)
		if err := a.loop.Run(loopCtx); err != nil {
			a.logger.Error("Reactor loop failed", "error", err)
		}
	}()
	go a.deps.Notifier.Watchdog(loopCtx)

	if a.deps.Bus != nil {
		a.deps.Bus.Publish(events.BoardResolvedEvent{
			Identity:  identity,
			Board:     profile.Name,
			Driver:    driver.Name(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	if _, err := a.deps.Notifier.Status("board " + profile.Name); err != nil {
		a.logger.Debug("Failed to send systemd status", "error", err)
	}
	if _, err := a.deps.Notifier.Ready(); err != nil {
		a.logger.Debug("Failed to notify systemd readiness", "error", err)
	}

	a.logger.Info("Button sample running", "driver", driver.Name(), "input_model", string(source.Model()))
	return nil
}

func (a *App) resolve() (board.Profile, string, error) {
	table := a.deps.Table
	if table == nil {
		var err error
		table, err = board.LoadTable(a.cfg.TableFile)
		if err != nil {
			return board.Profile{}, "", &ConfigurationError{Code: ErrCodeBadConfig, Message: "cannot load board table", Cause: err}
		}
	}

	sources := a.deps.Sources
	if sources == nil {
		sources = board.DefaultSources(a.cfg.Identity, a.cfg.IdentityPath)
	}

	profile, identity, err := board.Identify(table, sources...)
	if err != nil {
		msg := "unsupported board"
		if identity != "" {
			msg = fmt.Sprintf("unsupported board %q", identity)
		}
		return board.Profile{}, identity, &ConfigurationError{Code: ErrCodeUnknownBoard, Message: msg, Cause: err}
	}
	return profile, identity, nil
}

func lineUnavailable(msg string, cause error) *ConfigurationError {
	return &ConfigurationError{Code: ErrCodeLineUnavailable, Message: msg, Cause: cause}
}

func (a *App) openLines() error {
	led, err := a.driver.Open(a.profile.LEDSpec(), gpio.ModeOutputHigh)
	if err != nil {
		return lineUnavailable(fmt.Sprintf("LED line %s unavailable", a.profile.LEDSpec()), err)
	}
	a.led = led

	button, err := a.driver.Open(a.profile.ButtonSpec(), a.profile.ButtonMode())
	if err != nil {
		// The LED came up high; leave it dark before it is released.
		if setErr := led.SetValue(!a.profile.LitLevel()); setErr != nil {
			a.logger.Warn("Failed to reset LED after button open failure", "error", setErr)
		}
		return lineUnavailable(fmt.Sprintf("button line %s unavailable", a.profile.ButtonSpec()), err)
	}
	a.button = button
	return nil
}

// Stop halts the input source, stops the reactor loop, resets the LED and
// releases the lines. A worker that overruns the grace period is logged
// and teardown continues.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateRunning {
		return ErrNotRunning
	}
	a.state = StateStopping

	if _, err := a.deps.Notifier.Stopping(); err != nil {
		a.logger.Debug("Failed to notify systemd stopping", "error", err)
	}

	if err := a.source.Stop(a.cfg.ShutdownGrace); err != nil {
		if errors.Is(err, input.ErrLifecycleInterrupted) {
			a.logger.Warn("Input worker did not stop in time, continuing shutdown", "grace", a.cfg.ShutdownGrace)
		} else {
			a.logger.Warn("Failed to stop input source", "error", err)
		}
	}

	a.cancel()
	<-a.loopDone

	a.reactor.Reset()
	err := a.closeLines()

	a.state = StateIdle
	a.logger.Info("Button sample stopped")
	return err
}

func (a *App) closeLines() error {
	var errs []error
	if a.button != nil {
		errs = append(errs, a.button.Close())
		a.button = nil
	}
	if a.led != nil {
		errs = append(errs, a.led.Close())
		a.led = nil
	}
	if a.driver != nil {
		errs = append(errs, a.driver.Close())
		a.driver = nil
	}
	return errors.Join(errs...)
}

// Press posts a soft press, as from an on-screen button.
func (a *App) Press() bool {
	return a.post(reactor.Press(reactor.SourceSoft))
}

// Release posts a soft release.
func (a *App) Release() bool {
	return a.post(reactor.Release(reactor.SourceSoft))
}

func (a *App) post(ev reactor.ButtonEvent) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateRunning {
		return false
	}
	return a.loop.Post(ev)
}

// State returns the lifecycle state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Board returns the resolved profile and detected identity. ok is false
// before a successful Start.
func (a *App) Board() (profile board.Profile, identity string, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile, a.identity, a.profile.Name != ""
}

// Display returns what is on screen.
func (a *App) Display() display.State {
	return a.model.State()
}

// LED returns the logical LED state.
func (a *App) LED() reactor.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.reactor == nil {
		return reactor.LedOff
	}
	return a.reactor.State()
}
