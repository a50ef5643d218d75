package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// App — собранное приложение. В режиме server нужен router,
// в режиме worker очередь писем и SMTP-отправитель
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	router   http.Handler
	mailJobs ports.MailJobConsumer
	delivery ports.Mailer
	closers  []func() error
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	mailJobs ports.MailJobConsumer,
	delivery ports.Mailer,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		router:   router,
		mailJobs: mailJobs,
		delivery: delivery,
	}
}

// OnShutdown регистрирует закрытие ресурса; вызываются в обратном порядке
func (a *App) OnShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Run блокируется до SIGINT/SIGTERM или ошибки запуска
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		if a.router == nil {
			err = errors.New("режим server: HTTP-обработчик не инициализирован")
			break
		}
		err = runServer(ctx, a.cfg, a.router, a.logger)
	case ModeWorker:
		if a.mailJobs == nil || a.delivery == nil {
			err = errors.New("режим worker: очередь писем не настроена")
			break
		}
		err = runWorker(ctx, a.mailJobs, a.delivery, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}
