// Package logger предоставляет структурированное логирование на базе zerolog.
// В production пишет JSON, в development может выводить читаемый текст.
// Сообщения логов пишутся на русском языке.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// log — глобальный логгер пакета.
var log zerolog.Logger

// Config содержит настройки логгера.
type Config struct {
	// Level — минимальный уровень: debug, info, warn, error.
	Level string

	// Pretty включает ConsoleWriter вместо JSON.
	Pretty bool

	// Output — куда писать логи. По умолчанию os.Stdout.
	Output io.Writer

	// Service добавляется в каждую запись, если не пустой.
	Service string
}

// init настраивает логгер по LOG_LEVEL и LOG_PRETTY до вызова Init,
// чтобы пакеты могли логировать на этапе запуска.
func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	Init(Config{
		Level:  level,
		Pretty: strings.EqualFold(os.Getenv("LOG_PRETTY"), "true"),
	})
}

// Init инициализирует глобальный логгер.
func Init(cfg Config) {
	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	lctx := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller()
	if cfg.Service != "" {
		lctx = lctx.Str("service", cfg.Service)
	}
	log = lctx.Logger()

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
}

// parseLevel преобразует строку в zerolog.Level. Неизвестное значение — info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug создаёт событие уровня debug.
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info создаёт событие уровня info.
func Info() *zerolog.Event {
	return log.Info()
}

// Warn создаёт событие уровня warn.
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error создаёт событие уровня error.
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal создаёт событие уровня fatal. После Msg() процесс завершится с кодом 1.
func Fatal() *zerolog.Event {
	return log.Fatal()
}

// With возвращает контекст для создания дочернего логгера с полями.
//
//	log := logger.With().Str("component", "outbox").Logger()
func With() zerolog.Context {
	return log.With()
}

// Logger возвращает глобальный логгер.
func Logger() zerolog.Logger {
	return log
}

// SetGlobalLogger подменяет глобальный логгер (используется в тестах).
func SetGlobalLogger(l zerolog.Logger) {
	log = l
}
