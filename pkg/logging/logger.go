package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with service-level conveniences.
type Logger struct {
	*zap.Logger
	serviceName string
}

// Config represents logger configuration.
type Config struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Format      string `json:"format" yaml:"format" mapstructure:"format"`
	Output      string `json:"output" yaml:"output" mapstructure:"output"`
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// Field represents a log field.
type Field = zapcore.Field

// NewLogger creates a new logger instance.
func NewLogger(config Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(config.Format) {
	case "console":
		zapConfig.Encoding = "console"
	default:
		zapConfig.Encoding = "json"
	}

	switch strings.ToLower(config.Output) {
	case "stderr":
		zapConfig.OutputPaths = []string{"stderr"}
	case "", "stdout":
		zapConfig.OutputPaths = []string{"stdout"}
	default:
		zapConfig.OutputPaths = []string{config.Output}
	}

	zapConfig.InitialFields = map[string]interface{}{
		"service": config.ServiceName,
	}

	zapLogger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: config.ServiceName,
	}, nil
}

// NewDevelopmentLogger creates a development logger.
func NewDevelopmentLogger(serviceName string) *Logger {
	logger, err := NewLogger(Config{
		Level:       "debug",
		Format:      "console",
		Output:      "stdout",
		ServiceName: serviceName,
		Development: true,
	})
	if err != nil {
		return &Logger{Logger: zap.NewExample(), serviceName: serviceName}
	}
	return logger
}

// WithComponent adds component information to the logger.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:      l.Logger.With(zap.String("component", component)),
		serviceName: l.serviceName,
	}
}

// WithError adds error information to the logger.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger:      l.Logger.With(zap.Error(err)),
		serviceName: l.serviceName,
	}
}

// Cleanup flushes any buffered log entries.
func (l *Logger) Cleanup() {
	if l.Logger != nil {
		_ = l.Logger.Sync()
	}
}

// Field helpers.

func String(key, value string) Field               { return zap.String(key, value) }
func Int(key string, value int) Field              { return zap.Int(key, value) }
func Int64(key string, value int64) Field          { return zap.Int64(key, value) }
func Bool(key string, value bool) Field            { return zap.Bool(key, value) }
func Duration(key string, v time.Duration) Field   { return zap.Duration(key, v) }
func Err(err error) Field                          { return zap.Error(err) }
func Any(key string, value interface{}) Field      { return zap.Any(key, value) }
