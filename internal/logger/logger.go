package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// SlogConfig описывает параметры логгера
type SlogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" или "text"
	Output io.Writer
}

// ParseLevel переводит строковый уровень из конфигурации в slog.Level
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewSlog создаёт и настраивает slog.Logger
func NewSlog(cfg SlogConfig) *slog.Logger {
	lvl := ParseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
				}
				return a
			},
		})
	}

	return slog.New(handler)
}

// NewGormLogger направляет SQL-логи GORM в тот же slog.Handler.
// Медленные запросы (> 200ms) пишутся как warn, "record not found" не логируется.
func NewGormLogger(l *slog.Logger, level string) gormlogger.Interface {
	gormLevel := gormlogger.Warn
	switch level {
	case "debug":
		gormLevel = gormlogger.Info
	case "error":
		gormLevel = gormlogger.Error
	}

	return gormlogger.New(
		slog.NewLogLogger(l.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Discard возвращает логгер, который ничего не пишет (удобно в тестах)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
