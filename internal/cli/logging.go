package cli

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is kept so Execute can flush it on exit.
var zapLogger *zap.Logger

// newLogger returns a discarding logger unless verbose is set, in which
// case it returns a zap development logger on stderr that also shows
// V(1) messages from the engine and toolkits.
func newLogger(verbose bool) (logr.Logger, error) {
	if !verbose {
		return logr.Discard(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	// zapr maps logr V(n) to zap level -n.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-1))
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	zapLogger = z
	return zapr.NewLogger(z).WithName("tabsync"), nil
}

func syncLogger() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
