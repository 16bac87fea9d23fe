package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/internal/infrastructure/outbox"
)

// MailSender delivers a single order notification.
type MailSender interface {
	SendOrderCreated(ctx context.Context, order *domain.Order) error
}

// DispatcherConfig controls how frequently the outbox is drained.
type DispatcherConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxDispatcher drains pending notifications on a schedule. Failed
// deliveries are requeued until the retry limit is reached.
type OutboxDispatcher struct {
	store  *outbox.Store
	sender MailSender
	logger *zap.Logger
	cron   *cron.Cron
	cfg    DispatcherConfig
}

func NewOutboxDispatcher(
	store *outbox.Store,
	sender MailSender,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *OutboxDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &OutboxDispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return d
}

// Start launches the cron scheduler.
func (d *OutboxDispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("outbox dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *OutboxDispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("outbox dispatcher stopped")
}

// Drain delivers pending notifications synchronously.
func (d *OutboxDispatcher) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}

	msgs, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := d.deliver(ctx, msg); err != nil {
			d.logger.Error("notification delivery failed",
				zap.String("message_id", msg.ID),
				zap.String("order_code", msg.OrderCode),
				zap.Error(err))

			msg.Attempts++
			if msg.Attempts >= d.cfg.MaxRetries {
				d.logger.Warn("dropping notification (max retries reached)",
					zap.String("message_id", msg.ID))
				_ = d.store.Remove(msg)
				continue
			}

			if err := d.store.Requeue(msg); err != nil {
				d.logger.Error("failed to requeue outbox message", zap.Error(err))
			}
			continue
		}

		if err := d.store.Remove(msg); err != nil {
			d.logger.Warn("failed to purge delivered message", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending notifications.
func (d *OutboxDispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (d *OutboxDispatcher) deliver(ctx context.Context, msg outbox.Message) error {
	switch msg.Kind {
	case outbox.KindOrderCreated:
		var order domain.Order
		if err := json.Unmarshal(msg.Payload, &order); err != nil {
			return err
		}
		return d.sender.SendOrderCreated(ctx, &order)
	default:
		return fmt.Errorf("unsupported message kind %s", msg.Kind)
	}
}
