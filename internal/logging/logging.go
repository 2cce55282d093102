// Package logging builds the zap loggers used by the registry and server.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(level string) (zapcore.Level, error) {
	lvl := zapcore.InfoLevel

	if level != "" {
		err := lvl.UnmarshalText([]byte(level))
		if err != nil {
			return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	return lvl, nil
}

// New returns a JSON logger writing to w, using the production encoder.
func New(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)

	return zap.New(core, zap.AddCaller()), nil
}
