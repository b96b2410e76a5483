// Package logging provides structured logging with per-module log levels.
//
// Records fan out to every available sink:
//   - stdout when a terminal, pipe or file is attached (text or json)
//   - the systemd journal when journald is reachable
//   - a size-rotated file when Config.File is set
//   - an in-memory ring buffer that backs the control panel log view
//
// Initialize once at startup, then take a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"reactor": "debug"},
//	})
//
//	logger := logging.GetLogger("reactor")
//	logger.Info("LED written", "level", true)
//
// Module loggers are cached and keep a *slog.LevelVar, so SetLevels can
// change verbosity at runtime without recreating them.
//
// When running under systemd:
//
//	journalctl -t gpiosample -f
//	journalctl -t gpiosample MODULE=reactor
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	file = "/var/log/gpiosample.log"
//	reactor = "debug"
//	input = "warn"
package logging
