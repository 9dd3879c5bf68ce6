package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeWelcomeEmail = "email:welcome"

type WelcomePayload struct {
	Template  Template `json:"template"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	CompanyID string   `json:"company_id,omitempty"`
}

func NewWelcomeTask(p WelcomePayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWelcomeEmail, b), nil
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue puts mail tasks on the worker queue.
type Queue struct {
	client TaskEnqueuer
	queue  string
	logger *zap.Logger
}

func NewQueue(client TaskEnqueuer, queue string, logger *zap.Logger) *Queue {
	return &Queue{client: client, queue: queue, logger: logger.Named("mail-queue")}
}

func (q *Queue) EnqueueWelcome(ctx context.Context, p WelcomePayload) error {
	task, err := NewWelcomeTask(p)
	if err != nil {
		return fmt.Errorf("build welcome task: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("enqueue welcome task: %w", err)
	}
	q.logger.Info("welcome mail queued", zap.String("task_id", info.ID), zap.String("template", string(p.Template)))
	return nil
}

// WelcomeHandler renders and sends welcome mails on the worker.
type WelcomeHandler struct {
	sender  Sender
	from    string
	appURL  string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewWelcomeHandler(sender Sender, from, appURL string, m *metrics.Metrics, logger *zap.Logger) *WelcomeHandler {
	if m == nil {
		m = metrics.New(nil)
	}
	return &WelcomeHandler{
		sender:  sender,
		from:    from,
		appURL:  strings.TrimRight(appURL, "/"),
		metrics: m,
		logger:  logger.Named("welcome-mail"),
	}
}

func (h *WelcomeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode welcome payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Email == "" || p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("welcome payload missing recipient fields: %w", asynq.SkipRetry)
	}

	msg, err := RenderWelcome(p, h.from, h.appURL)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	id, err := h.sender.Send(ctx, msg)
	if err != nil {
		h.metrics.MailSent.WithLabelValues(string(p.Template), "error").Inc()
		h.logger.Error("welcome mail failed", zap.String("template", string(p.Template)), zap.Error(err))

		var rej *RejectedError
		if errors.As(err, &rej) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	h.metrics.MailSent.WithLabelValues(string(p.Template), "ok").Inc()
	h.logger.Info("welcome mail sent", zap.String("template", string(p.Template)), zap.String("message_id", id))
	return nil
}
