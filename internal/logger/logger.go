package logger

import (
	"go.uber.org/zap"
)

var base = zap.NewNop()

func Init() {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	base = l
	base.Info("logger initialized")
}

func Info(msg string, fields map[string]any) {
	base.Info(msg, zapFields(fields)...)
}

func Warn(msg string, fields map[string]any) {
	base.Warn(msg, zapFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	base.Error(msg, zapFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	base.Fatal(msg, zapFields(fields)...)
}

func zapFields(m map[string]any) []zap.Field {
	if len(m) == 0 {
		return nil
	}
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}
