package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Debug bool
}

// NewLogger builds a JSON production logger at info level, or debug level when cfg.Debug is set.
func NewLogger(cfg *LoggerConfig, options ...zap.Option) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}

	c := zap.NewProductionConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	mergedOptions := append([]zap.Option{zap.WithCaller(true)}, options...)
	return c.Build(mergedOptions...)
}
