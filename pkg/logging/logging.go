// Package logging wires zerolog for pkgmerge: a console writer on stderr, a
// persistent log file under the XDG state dir, and component loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileName is the name of the log file kept under the XDG state directory.
const LogFileName = "pkgmerge.log"

// levelFor maps the -v count to a zerolog level. Zero keeps only warnings so
// trigger problems still reach the terminal.
func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger installs the global logger for the given verbosity. Output
// goes to stderr and, when the state dir is writable, to the log file too.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}}

	logFile := getLogFilePath()
	fh, err := openLogFile(logFile)
	if err == nil {
		writers = append(writers, fh)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Log file unavailable, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("log_file", logFile).Msg("Logger initialized")
}

// GetLogger returns the global logger tagged with a component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForTransaction returns a component logger carrying the transaction mode
// and root offset.
func ForTransaction(component, mode, offset string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Str("mode", mode).
		Str("offset", offset).
		Logger()
}

// SetOutput replaces the global logger with one writing JSON lines to w.
func SetOutput(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// LogHelper records the invocation of an external helper program.
func LogHelper(logger zerolog.Logger, name string, args []string) {
	logger.Debug().
		Str("command", name).
		Strs("args", args).
		Msg("Running helper")
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}

// getLogFilePath honors XDG_STATE_HOME, falling back to
// ~/.local/state/pkgmerge/.
func getLogFilePath() string {
	xdg.Reload()
	if xdg.StateHome == "" {
		return LogFileName
	}
	return filepath.Join(xdg.StateHome, "pkgmerge", LogFileName)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
