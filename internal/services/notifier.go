package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/internal/infrastructure/outbox"
)

// OutboxNotifier satisfies the order use case's notifier port by writing the
// notification into the durable outbox. Delivery is the dispatcher's job.
type OutboxNotifier struct {
	store  *outbox.Store
	logger *zap.Logger
}

func NewOutboxNotifier(store *outbox.Store, logger *zap.Logger) *OutboxNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxNotifier{store: store, logger: logger}
}

// EnqueueOrderCreated persists the order snapshot for asynchronous delivery.
func (n *OutboxNotifier) EnqueueOrderCreated(_ context.Context, order *domain.Order) error {
	if order == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}

	msg := outbox.Message{
		Kind:      outbox.KindOrderCreated,
		Recipient: order.Email,
		OrderCode: order.Code,
		Payload:   payload,
	}
	if err := n.store.Enqueue(msg); err != nil {
		return err
	}

	n.logger.Debug("order notification enqueued", zap.String("order_code", order.Code))
	return nil
}
