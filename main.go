package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/gpiosample/cmd"
	"github.com/smazurov/gpiosample/internal/api"
	"github.com/smazurov/gpiosample/internal/app"
	"github.com/smazurov/gpiosample/internal/config"
	"github.com/smazurov/gpiosample/internal/events"
	"github.com/smazurov/gpiosample/internal/input"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Board settings
	BoardIdentity     string `help:"Board identity, skips detection when set" toml:"board.identity" env:"BOARD_IDENTITY"`
	BoardIdentityPath string `help:"File holding the board identity" default:"/proc/device-tree/digi,machine,name" toml:"board.identity_path" env:"BOARD_IDENTITY_PATH"`
	BoardTableFile    string `help:"TOML file with extra or overriding board profiles" toml:"board.table_file" env:"BOARD_TABLE_FILE"`

	// GPIO settings
	GPIODriver            string `help:"GPIO driver (auto, periph, cdev, sim)" default:"auto" toml:"gpio.driver" env:"GPIO_DRIVER"`
	GPIOInputModel        string `help:"Button input model (auto, polling, listener)" default:"auto" toml:"gpio.input_model" env:"GPIO_INPUT_MODEL"`
	GPIOPollTimeout       string `help:"Edge wait timeout of the polling model" default:"100ms" toml:"gpio.poll_timeout" env:"GPIO_POLL_TIMEOUT"`
	GPIOReleasePollPeriod string `help:"Release polling period for press-only buttons" default:"5ms" toml:"gpio.release_poll_period" env:"GPIO_RELEASE_POLL_PERIOD"`
	GPIOShutdownGrace     string `help:"How long shutdown waits for the input worker" default:"1s" toml:"gpio.shutdown_grace" env:"GPIO_SHUTDOWN_GRACE"`
	ReactorInboxSize      int    `help:"Button events queued before new ones are dropped" default:"32" toml:"reactor.inbox_size" env:"REACTOR_INBOX_SIZE"`

	// Panel settings
	PanelAddr     string `help:"Control panel listen address, disabled when empty" toml:"panel.addr" env:"PANEL_ADDR"`
	PanelUsername string `help:"Panel basic auth username" toml:"panel.username" env:"PANEL_USERNAME"`
	PanelPassword string `help:"Panel basic auth password" toml:"panel.password" env:"PANEL_PASSWORD"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingFile    string `help:"Rotated log file, disabled when empty" toml:"logging.file" env:"LOGGING_FILE"`
	LoggingApp     string `help:"Application logging level, follows logging.level when empty" toml:"logging.app" env:"LOGGING_APP"`
	LoggingReactor string `help:"Reactor logging level, follows logging.level when empty" toml:"logging.reactor" env:"LOGGING_REACTOR"`
	LoggingInput   string `help:"Input source logging level, follows logging.level when empty" toml:"logging.input" env:"LOGGING_INPUT"`
	LoggingGPIO    string `help:"GPIO driver logging level, follows logging.level when empty" toml:"logging.gpio" env:"LOGGING_GPIO"`
	LoggingDisplay string `help:"Display logging level, follows logging.level when empty" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingAPI     string `help:"Panel API logging level, follows logging.level when empty" toml:"logging.api" env:"LOGGING_API"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		File:   o.LoggingFile,
		Modules: map[string]string{
			"app":     o.LoggingApp,
			"reactor": o.LoggingReactor,
			"input":   o.LoggingInput,
			"gpio":    o.LoggingGPIO,
			"display": o.LoggingDisplay,
			"api":     o.LoggingAPI,
		},
	}
}

func (o *Options) appConfig() (app.Config, error) {
	cfg := app.DefaultConfig()
	cfg.Identity = o.BoardIdentity
	cfg.IdentityPath = o.BoardIdentityPath
	cfg.TableFile = o.BoardTableFile
	cfg.Driver = o.GPIODriver
	cfg.InputModel = input.Model(o.GPIOInputModel)
	if o.ReactorInboxSize > 0 {
		cfg.InboxSize = o.ReactorInboxSize
	}
	if err := cfg.ParseDurations(o.GPIOPollTimeout, o.GPIOReleasePollPeriod, o.GPIOShutdownGrace); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func fatal(logger *slog.Logger, msg string, err error) {
	var cfgErr *app.ConfigurationError
	if errors.As(err, &cfgErr) {
		if cfgErr.Cause != nil {
			fmt.Fprintf(os.Stderr, "gpiosample: %s: %v\n", cfgErr.Message, cfgErr.Cause)
		} else {
			fmt.Fprintf(os.Stderr, "gpiosample: %s\n", cfgErr.Message)
		}
	}
	logger.Error(msg, "error", err)
	_ = logging.Close()
	os.Exit(1)
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")

		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEntryEvent(entry))
		})

		// Module levels follow the config file while running.
		var watcher *config.Watcher[logging.Config]
		if _, statErr := os.Stat(opts.Config); statErr == nil {
			watcher = config.NewConfigWatcher(opts.Config, config.ReadLoggingConfig, logging.GetLogger("config"))
			watcher.OnReload(func(cfg logging.Config) {
				logging.SetLevels(cfg.Level, cfg.Modules)
				logger.Info("Logging levels reloaded", "level", cfg.Level)
			})
		}

		appMetrics := metrics.New()
		appConfig, cfgErr := opts.appConfig()
		application := app.New(appConfig, app.Deps{
			Bus:     eventBus,
			Metrics: appMetrics,
		})

		var server *api.Server
		if opts.PanelAddr != "" {
			server = api.NewServer(&api.Options{
				AuthUsername:      opts.PanelUsername,
				AuthPassword:      opts.PanelPassword,
				Controller:        application,
				EventBus:          eventBus,
				PrometheusHandler: appMetrics.Handler(),
			})
		}
		done := make(chan struct{})

		hooks.OnStart(func() {
			if cfgErr != nil {
				fatal(logger, "Invalid configuration", cfgErr)
			}
			if startErr := application.Start(context.Background()); startErr != nil {
				fatal(logger, "Failed to start button sample", startErr)
			}

			if watcher != nil {
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Failed to watch config file", "path", opts.Config, "error", watchErr)
				}
			}

			if server == nil {
				<-done
				return
			}
			if startErr := server.Start(opts.PanelAddr); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start panel server", "error", startErr)
				stopApplication(logger, application)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if server != nil {
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping panel server", "error", stopErr)
				}
			}
			if watcher != nil {
				_ = watcher.Stop()
			}
			stopApplication(logger, application)
			close(done)
			_ = logging.Close()
		})
	})

	cli.Root().Use = "gpiosample"
	cli.Root().Short = "Light the user LED while the user button is held"
	cli.Root().AddCommand(cmd.CreateBoardsCmd())
	cli.Root().AddCommand(cmd.CreateIdentifyCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}

func stopApplication(logger *slog.Logger, application *app.App) {
	if err := application.Stop(); err != nil && !errors.Is(err, app.ErrNotRunning) {
		logger.Error("Error stopping button sample", "error", err)
	}
}
