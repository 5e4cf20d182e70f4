// Package logging builds the diagnostic zap logger used by the catalog CLI.
package logging

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidLevel is returned for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// New returns a console logger writing to w at level. An empty level
// returns a no-op logger.
func New(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(lvl),
	)

	return zap.New(core), nil
}
