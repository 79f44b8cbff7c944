package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
	"github.com/Umary15/student-skill-share/internal/realtime"
)

// Notifier runs the toast queue: enqueue on one side, persist and push
// on the other. Delivery is at-least-once; the notification row is the
// durable copy and the socket push is best effort.
type Notifier struct {
	client *asynq.Client
	server *asynq.Server
	store  NotificationStore
	hub    *realtime.Hub
	logger *zap.Logger
}

func New(redisAddr string, store NotificationStore, hub *realtime.Hub, logger *zap.Logger) *Notifier {
	opts := asynq.RedisClientOpt{Addr: redisAddr}

	n := &Notifier{
		client: asynq.NewClient(opts),
		store:  store,
		hub:    hub,
		logger: logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskToastDeliver, n.handleToastDeliver)

	n.server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"toasts": 10,
		},
	})
	go func() {
		if err := n.server.Run(mux); err != nil {
			logger.Error("toast queue stopped", zap.Error(err))
		}
	}()

	logger.Info("toast queue started", zap.String("redis", redisAddr))
	return n
}

// Toast enqueues one notice for delivery.
func (n *Notifier) Toast(ctx context.Context, notice lifecycle.Notice) error {
	payload := ToastPayload{
		UserID:   notice.UserID,
		Severity: notice.Severity,
		Title:    notice.Title,
		Body:     notice.Detail,
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskToastDeliver, b)
	_, err := n.client.EnqueueContext(ctx, task, asynq.Queue("toasts"))
	return err
}

func (n *Notifier) handleToastDeliver(ctx context.Context, t *asynq.Task) error {
	var p ToastPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}

	saved, err := n.store.SaveNotification(ctx, &model.Notification{
		UserID:   p.UserID,
		Severity: p.Severity,
		Title:    p.Title,
		Body:     p.Body,
	})
	if err != nil {
		n.logger.Error("notification persist failed", zap.String("user_id", p.UserID), zap.Error(err))
		return err
	}

	n.hub.Push(p.UserID, realtime.Event{Type: "toast", Data: saved})
	n.logger.Debug("toast delivered",
		zap.String("user_id", p.UserID), zap.String("title", p.Title))
	return nil
}

// Close releases the client and stops the worker server.
func (n *Notifier) Close() {
	_ = n.client.Close()
	n.server.Shutdown()
}
