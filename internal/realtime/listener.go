package realtime

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const changeChannel = "order_events"

// Listener holds a dedicated connection on LISTEN order_events and
// feeds every notification to the dispatcher. It reconnects with
// capped backoff until the context is cancelled.
type Listener struct {
	dsn        string
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewListener(dsn string, d *Dispatcher, logger *zap.Logger) *Listener {
	return &Listener{dsn: dsn, dispatcher: d, logger: logger}
}

func (l *Listener) Run(ctx context.Context) error {
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := l.listen(ctx); err != nil {
			l.logger.Warn("change feed dropped, reconnecting", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return err
	}
	l.logger.Info("change feed attached", zap.String("channel", changeChannel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		l.dispatcher.Handle(ctx, []byte(n.Payload))
	}
}
