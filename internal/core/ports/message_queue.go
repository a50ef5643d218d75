package ports

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// Mailer отправляет письмо: напрямую по SMTP или через очередь
type Mailer interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}

// MailJobConsumer определяет методы для потребления задач отправки писем,
// используется воркером
type MailJobConsumer interface {
	// StartConsumingMailJobs начинает прослушивание очереди; handler вызывается
	// для каждого сообщения, ошибка обработчика возвращает сообщение в очередь
	StartConsumingMailJobs(ctx context.Context, handler func(context.Context, payloads.MailJobPayload) error) error
}
