package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so components can share one configured root and
// derive named children from it.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
}

// DefaultConfig returns production logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Development: false,
		OutputPaths: []string{"stderr"},
	}
}

// DevelopmentConfig returns development logger configuration.
func DevelopmentConfig() Config {
	return Config{
		Level:       "debug",
		Development: true,
		OutputPaths: []string{"stderr"},
	}
}

// New creates a logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encodingFormat(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewDefault creates a production logger, falling back to a no-op logger.
func NewDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewDevelopment creates a development logger, falling back to a no-op logger.
func NewDevelopment() *Logger {
	logger, err := New(DevelopmentConfig())
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewNop returns a logger that discards everything. Used in tests and as the
// default for components constructed without a logger.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a child logger for a component.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return NewNop().Named(name)
	}
	return &Logger{Logger: l.Logger.Named(name)}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
