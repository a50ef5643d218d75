package di

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/GoArmGo/BlogApp/internal/adapter/mail/smtp"
	"github.com/GoArmGo/BlogApp/internal/adapter/storage/local"
	"github.com/GoArmGo/BlogApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/BlogApp/internal/app"
	"github.com/GoArmGo/BlogApp/internal/auth"
	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/database/client"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/handler"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/rabbitmq"
	"github.com/GoArmGo/BlogApp/internal/session"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// BuildApp инициализирует все зависимости для режима mode и возвращает готовый объект App.
func BuildApp(ctx context.Context, mode string) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	switch mode {
	case app.ModeServer:
		return buildServer(ctx, cfg, slogger)
	case app.ModeWorker:
		return buildWorker(cfg, slogger)
	default:
		return nil, fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}
}

func buildServer(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (_ *app.App, err error) {
	var closers []func() error
	// при ошибке закрываем то, что уже успели открыть
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	// 2. Инициализация PostgreSQL клиента (с миграциями)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient.Close)

	// 3. Инициализация хранилищ
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)
	postStorage := storage.NewPostStorage(dbClient.Gorm, slogger)

	pictures, err := newPictureStorage(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 4. Отправка писем: напрямую по SMTP или через очередь воркеру
	var mailer ports.Mailer
	switch cfg.MailDelivery {
	case config.MailDeliveryQueue:
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() error { rabbitMQClient.Close(); return nil })
		mailer = rabbitMQClient
	default:
		mailer = newSMTPMailer(cfg, slogger)
	}

	// 5. Инициализация бизнес-логики (usecases)
	resetTokens := auth.NewResetTokens(cfg.SecretKey, cfg.ResetTokenTTL)
	accountUseCase := usecase.NewAccountUseCase(userStorage, pictures, mailer, resetTokens, cfg.BaseURL, slogger)
	postUseCase := usecase.NewPostUseCase(postStorage, userStorage, cfg.PostsPerPage, slogger)

	sessions := session.NewManager(session.Options{
		Secret:      cfg.SecretKey,
		SessionTTL:  cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
		Secure:      cfg.CookieSecure,
	})

	// 6. Лимитер одновременных загрузок картинок
	uploadLimiter := make(chan struct{}, cfg.UploadConcurrency)

	h, err := handler.NewHandler(accountUseCase, postUseCase, sessions, pictures, dbClient, uploadLimiter,
		handler.Options{StaticDir: cfg.StaticDir, MaxUploadBytes: cfg.MaxUploadBytes}, slogger)
	if err != nil {
		return nil, err
	}

	// 7. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, handler.NewRouter(h, cfg.RequestTimeout, slogger), nil, nil)
	for _, c := range closers {
		application.OnShutdown(c)
	}

	slogger.Info("all server dependencies initialized",
		"picture_storage", cfg.PictureStorage,
		"mail_delivery", cfg.MailDelivery,
	)
	return application, nil
}

func buildWorker(cfg *config.Config, slogger *slog.Logger) (*app.App, error) {
	if cfg.RabbitMQ.RabbitMQURL == "" {
		return nil, fmt.Errorf("режим worker требует RABBITMQ_URL")
	}

	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	application := app.NewApp(cfg, slogger, nil, rabbitMQClient, newSMTPMailer(cfg, slogger))
	application.OnShutdown(func() error { rabbitMQClient.Close(); return nil })

	slogger.Info("all worker dependencies initialized", "queue", cfg.RabbitMQ.RabbitMQQueueName)
	return application, nil
}

// newPictureStorage выбирает хранилище картинок профиля по PICTURE_STORAGE
func newPictureStorage(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (ports.FileStorage, error) {
	switch cfg.PictureStorage {
	case config.PictureStorageS3:
		s3, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		disk, err := local.NewStorage(filepath.Join(cfg.StaticDir, "profile_pics"), slogger)
		if err != nil {
			return nil, err
		}
		return disk, nil
	}
}

func newSMTPMailer(cfg *config.Config, slogger *slog.Logger) *smtp.Mailer {
	return smtp.NewMailer(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		StartTLS: cfg.SMTP.StartTLS,
		Timeout:  15 * time.Second,
	}, slogger)
}
