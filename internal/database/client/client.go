package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/logger"
)

// Client держит пул соединений с PostgreSQL.
// sqlx.DB используется для пинга и миграций, GORM работает поверх того же пула
type Client struct {
	DB     *sqlx.DB
	Gorm   *gorm.DB
	logger *slog.Logger
}

// NewClient открывает соединение с PostgreSQL, применяет миграции и поднимает GORM
func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Error("failed to ping database", "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if err := applyMigrations(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка при применении миграций: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         logger.NewGormLogger(log, cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка инициализации GORM: %w", err)
	}

	log.Info("PostgreSQL connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, Gorm: gormDB, logger: log}, nil
}

// applyMigrations применяет все доступные миграции к бд
func applyMigrations(sourceURL, databaseURL string, log *slog.Logger) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("migrations are up to date")
	case err != nil:
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	default:
		log.Info("migrations applied successfully")
	}
	return nil
}

// Ping проверяет доступность БД (используется health-check'ом)
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
