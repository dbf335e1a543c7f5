package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger
var sugar *zap.SugaredLogger

// Init initializes the global logger. Environment "dev" gets a colored console
// encoder; anything else gets production JSON output.
func Init(service, env, level string) {
	var cfg zap.Config

	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	built, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.Fields(zap.String("service", service)))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	log = built
	sugar = built.Sugar()
}

// L returns the base structured logger.
func L() *zap.Logger {
	if log == nil {
		Init("pricer", "dev", "info")
	}
	return log
}

// S returns the sugared logger.
func S() *zap.SugaredLogger {
	if sugar == nil {
		Init("pricer", "dev", "info")
	}
	return sugar
}

// Sync flushes any buffered logs (defer this in main).
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
