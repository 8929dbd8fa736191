package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Production gets JSON output on stdout,
// everything else a colored console encoder at debug level.
func New(production bool) (*zap.Logger, error) {
	if production {
		zc := zap.NewProductionConfig()
		zc.DisableStacktrace = true
		zc.OutputPaths = []string{"stdout"}
		return zc.Build()
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}
