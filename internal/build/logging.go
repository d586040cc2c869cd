package build

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// LogConfig configures process logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error or critical.
	Level string

	// Dir is where the rotating log file lives. Empty disables the file.
	Dir string

	// Console receives human readable output. Defaults to stderr.
	Console io.Writer
}

// Logging owns the process logger and the resources behind it.
type Logging struct {
	// Logger is the root logger; components derive theirs with With.
	Logger *slog.Logger

	handlers *HandlerSet
	rotator  *RotatingLogWriter
}

// NewLogging builds the root logger: console output always, plus a gzip
// rotated file when a directory is configured.
func NewLogging(cfg LogConfig) (*Logging, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	handlers := []btclogv2.Handler{btclogv2.NewDefaultHandler(console)}

	var rotator *RotatingLogWriter
	if cfg.Dir != "" {
		rotator = NewRotatingLogWriter()

		rotCfg := DefaultLogRotatorConfig()
		rotCfg.LogDir = cfg.Dir
		if err := rotator.InitLogRotator(rotCfg); err != nil {
			return nil, err
		}

		handlers = append(handlers, btclogv2.NewDefaultHandler(rotator))
	}

	l := &Logging{
		handlers: NewHandlerSet(handlers...),
		rotator:  rotator,
	}
	if err := l.SetLevel(cfg.Level); err != nil {
		l.Close()
		return nil, err
	}
	l.Logger = slog.New(l.handlers)

	return l, nil
}

// SetLevel changes the level of every output. Empty means info.
func (l *Logging) SetLevel(level string) error {
	if level == "" {
		level = "info"
	}

	lvl, ok := btclog.LevelFromString(strings.ToLower(level))
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	l.handlers.SetLevel(lvl)

	return nil
}

// Close flushes and closes the log file, if any.
func (l *Logging) Close() error {
	if l.rotator == nil {
		return nil
	}

	return l.rotator.Close()
}
