// Package logger holds the process-wide zap logger. Entries go to an optional
// log file and always to an in-memory ring that the debug pane displays; the
// terminal itself is never written to.
package logger

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultRingSize is how many lines the debug ring keeps.
const DefaultRingSize = 500

// Config selects where log entries go.
type Config struct {
	File     string // empty: ring only
	Level    string // debug, info, warn, error; the ring always keeps debug
	JSON     bool   // JSON encoding for File
	RingSize int
}

var (
	// Logger is the global logger. It is a no-op until Initialize is called.
	Logger *zap.SugaredLogger

	history = NewRing(DefaultRingSize)
	closer  func() error
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger according to cfg. It may be called
// again, for instance after a config reload.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return errors.WithHint(errors.Wrap(err, "log level"), "use one of debug, info, warn, error")
		}
		level = l
	}

	size := cfg.RingSize
	if size <= 0 {
		size = DefaultRingSize
	}
	ring := NewRing(size)
	cores := []zapcore.Core{ring.Core(zapcore.DebugLevel)}

	var closeFile func() error
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return errors.Wrap(err, "create log directory")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if cfg.JSON {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
		closeFile = f.Close
	}

	Cleanup()
	history = ring
	closer = closeFile
	Logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

// History returns the ring fed by the current logger.
func History() *Ring {
	return history
}

// Named returns a child of the global logger for packages that take a
// *zap.Logger.
func Named(name string) *zap.Logger {
	return Logger.Desugar().Named(name)
}

// Cleanup flushes buffered entries and closes the log file, if any.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
	if closer != nil {
		_ = closer()
		closer = nil
	}
}
