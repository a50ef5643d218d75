package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

type stubMailer struct {
	sent []domain.MailMessage
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg domain.MailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// stubQueue сразу отдаёт заранее заданные задачи обработчику
type stubQueue struct {
	jobs    []payloads.MailJobPayload
	results []error
	err     error
}

func (q *stubQueue) StartConsumingMailJobs(ctx context.Context, handler func(context.Context, payloads.MailJobPayload) error) error {
	if q.err != nil {
		return q.err
	}
	for _, job := range q.jobs {
		q.results = append(q.results, handler(ctx, job))
	}
	return nil
}

func TestMailJobHandler(t *testing.T) {
	mailer := &stubMailer{}
	handle := mailJobHandler(mailer, logger.Discard())

	err := handle(context.Background(), payloads.MailJobPayload{ID: "1", To: "a@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, []domain.MailMessage{{To: "a@x.com", Subject: "s", Body: "b"}}, mailer.sent)

	mailer.err = errors.New("smtp down")
	err = handle(context.Background(), payloads.MailJobPayload{ID: "2"})
	assert.ErrorIs(t, err, mailer.err)
}

func TestRunWorker_StopsOnCancel(t *testing.T) {
	mailer := &stubMailer{}
	queue := &stubQueue{jobs: []payloads.MailJobPayload{{ID: "1", To: "a@x.com"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, runWorker(ctx, queue, mailer, logger.Discard()))
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, []error{nil}, queue.results)
}

func TestRunWorker_ConsumerError(t *testing.T) {
	queue := &stubQueue{err: errors.New("no channel")}
	err := runWorker(context.Background(), queue, &stubMailer{}, logger.Discard())
	assert.ErrorIs(t, err, queue.err)
}

func TestApp_UnknownModeClosesResources(t *testing.T) {
	a := NewApp(nil, logger.Discard(), nil, nil, nil)

	var order []string
	a.OnShutdown(func() error { order = append(order, "db"); return nil })
	a.OnShutdown(func() error { order = append(order, "queue"); return errors.New("boom") })

	err := a.Run(context.Background(), "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный режим")
	assert.Equal(t, []string{"queue", "db"}, order)
	assert.NoError(t, a.Shutdown())
}

func TestApp_WorkerModeRequiresQueue(t *testing.T) {
	a := NewApp(nil, logger.Discard(), nil, nil, nil)
	assert.Error(t, a.Run(context.Background(), ModeWorker))
	assert.Error(t, a.Run(context.Background(), ModeServer))
}
