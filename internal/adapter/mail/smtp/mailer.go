// Package smtp доставляет письма по SMTP с обязательным STARTTLS.
package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	StartTLS bool
	Timeout  time.Duration
}

// Mailer реализует ports.Mailer. Соединение открывается на каждое письмо,
// повторов нет
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.StartTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

// buildMessage собирает письмо с текстовым телом
func (m *Mailer) buildMessage(msg domain.MailMessage) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("некорректный адрес отправителя %q: %w", m.cfg.From, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("некорректный адрес получателя %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

func (m *Mailer) Send(ctx context.Context, msg domain.MailMessage) error {
	start := time.Now()

	out, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.options()...)
	if err != nil {
		return fmt.Errorf("ошибка настройки SMTP-клиента: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Error("failed to send mail", "host", m.cfg.Host, "to", msg.To, "error", err)
		return fmt.Errorf("ошибка отправки письма через %s: %w", m.cfg.Host, err)
	}

	m.logger.Info("mail sent",
		"to", msg.To,
		"subject", msg.Subject,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
