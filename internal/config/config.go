package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	PictureStorageLocal = "local"
	PictureStorageS3    = "s3"

	MailDeliverySync  = "sync"
	MailDeliveryQueue = "queue"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"file://internal/database/migrations"`
	ServerPort     string        `env:"SERVER_PORT"`
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Один секрет подписывает сессию, flash-сообщения и токены сброса пароля
	SecretKey     string        `env:"SECRET_KEY,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL   time.Duration `env:"REMEMBER_TTL" envDefault:"8760h"`
	CookieSecure  bool          `env:"COOKIE_SECURE"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"30m"`

	PostsPerPage int `env:"POSTS_PER_PAGE" envDefault:"2"`

	StaticDir         string `env:"STATIC_DIR" envDefault:"static"`
	MaxUploadBytes    int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	UploadConcurrency int    `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
	PictureStorage    string `env:"PICTURE_STORAGE" envDefault:"local"`

	// Настройки для MinIO (используются при PICTURE_STORAGE=s3)
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"profile-pics"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	SMTP struct {
		Host     string `env:"SMTP_HOST" envDefault:"localhost"`
		Port     int    `env:"SMTP_PORT" envDefault:"25"`
		Username string `env:"SMTP_USERNAME"`
		Password string `env:"SMTP_PASSWORD"`
		From     string `env:"SMTP_FROM" envDefault:"noreply@demo.com"`
		StartTLS bool   `env:"SMTP_STARTTLS" envDefault:"true"`
	}

	MailDelivery string `env:"MAIL_DELIVERY" envDefault:"sync"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"reset_mail_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY не может быть пустым")
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE должен быть больше нуля, получено %d", c.PostsPerPage)
	}
	if c.UploadConcurrency <= 0 {
		return fmt.Errorf("UPLOAD_CONCURRENCY должен быть больше нуля, получено %d", c.UploadConcurrency)
	}

	switch c.PictureStorage {
	case PictureStorageLocal:
	case PictureStorageS3:
		if c.MinioEndpoint == "" || c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "" {
			return fmt.Errorf("PICTURE_STORAGE=s3 требует MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID и MINIO_SECRET_ACCESS_KEY")
		}
	default:
		return fmt.Errorf("неизвестный PICTURE_STORAGE: %q (используйте %q или %q)", c.PictureStorage, PictureStorageLocal, PictureStorageS3)
	}

	switch c.MailDelivery {
	case MailDeliverySync:
	case MailDeliveryQueue:
		if c.RabbitMQ.RabbitMQURL == "" {
			return fmt.Errorf("MAIL_DELIVERY=queue требует RABBITMQ_URL")
		}
	default:
		return fmt.Errorf("неизвестный MAIL_DELIVERY: %q (используйте %q или %q)", c.MailDelivery, MailDeliverySync, MailDeliveryQueue)
	}

	return nil
}
