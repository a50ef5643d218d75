package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// runWorker забирает задачи из очереди писем и отправляет их через delivery
func runWorker(ctx context.Context, mailJobs ports.MailJobConsumer, delivery ports.Mailer, logger *slog.Logger) error {
	if err := mailJobs.StartConsumingMailJobs(ctx, mailJobHandler(delivery, logger)); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	logger.Info("worker started, waiting for mail jobs")

	<-ctx.Done()

	logger.Info("shutdown signal received, stopping worker")
	return nil
}

// mailJobHandler превращает задачу из очереди в письмо. Ошибка возвращает задачу в очередь
func mailJobHandler(delivery ports.Mailer, logger *slog.Logger) func(context.Context, payloads.MailJobPayload) error {
	return func(ctx context.Context, job payloads.MailJobPayload) error {
		logger.Info("processing mail job", "job_id", job.ID, "to", job.To)

		err := delivery.Send(ctx, domain.MailMessage{
			To:      job.To,
			Subject: job.Subject,
			Body:    job.Body,
		})
		if err != nil {
			return fmt.Errorf("задача %s: %w", job.ID, err)
		}
		return nil
	}
}
