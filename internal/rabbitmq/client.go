package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// Client представляет собой клиент RabbitMQ для очереди писем.
// В режиме server он публикует задачи (реализует ports.Mailer),
// в режиме worker потребляет их (ports.MailJobConsumer)
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь писем
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn
	logger.Info("connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// идемпотентно: очередь создаётся, только если её нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q
	logger.Info("queue declared", "queue", q.Name, "messages", q.Messages)

	return client, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
			return
		}
		c.logger.Info("RabbitMQ connection closed")
	}
}

// Send ставит письмо в очередь; доставку выполняет воркер
func (c *Client) Send(ctx context.Context, msg domain.MailMessage) error {
	payload := payloads.MailJobPayload{
		ID:      uuid.NewString(),
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	// тело письма содержит токен сброса, в лог его не пишем
	c.logger.Info("mail job published", "queue", c.queue.Name, "job_id", payload.ID, "to", payload.To)
	return nil
}

// StartConsumingMailJobs регистрирует потребителя и обрабатывает сообщения в горутине
// до отмены ctx или закрытия канала
func (c *Client) StartConsumingMailJobs(ctx context.Context, handler func(context.Context, payloads.MailJobPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.MailJobPayload) error) {
	processDelivery(ctx, c.logger, msg.Body, &msg, handler)
}

// processDelivery разбирает задачу и подтверждает её. Битое сообщение отбрасывается
// без возврата в очередь, ошибка обработчика возвращает его в очередь
func processDelivery(
	ctx context.Context,
	logger *slog.Logger,
	body []byte,
	ack acknowledger,
	handler func(context.Context, payloads.MailJobPayload) error,
) {
	var payload payloads.MailJobPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("error unmarshalling mail job", "error", err)
		if err := ack.Nack(false, false); err != nil {
			logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("error processing mail job", "job_id", payload.ID, "error", err)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("error ACKing message", "job_id", payload.ID, "error", err)
		return
	}
	logger.Info("mail job processed", "job_id", payload.ID)
}
