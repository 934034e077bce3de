package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// Init sets the process-wide logger once.
func Init(z *zap.SugaredLogger) { global = z }

// Logger is what every package calls. It never returns nil.
func Logger() *zap.SugaredLogger {
	if global == nil {
		// Callers that run before Init (library use, tests) get a no-op logger.
		return zap.NewNop().Sugar()
	}
	return global
}

// New builds a console logger writing to stderr at the given level.
// The level stays adjustable through SetLevel.
func New(lvl string) (*zap.SugaredLogger, error) {
	if err := SetLevel(lvl); err != nil {
		return nil, err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// SetLevel changes the level of loggers created by New.
// An empty string keeps the current level.
func SetLevel(lvl string) error {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	if lvl == "" {
		return nil
	}
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", lvl, err)
	}
	level.SetLevel(zl)
	return nil
}

// Level returns the current level name.
func Level() string {
	return level.Level().String()
}
