package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const KindOrderCreated = "order_created"

// Message is one pending notification. Payload carries the order snapshot
// taken at checkout.
type Message struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Recipient  string          `json:"recipient"`
	OrderCode  string          `json:"order_code"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`

	bucketKey []byte
}

func (m *Message) normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Kind == "" {
		m.Kind = KindOrderCreated
	}
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = time.Now()
	}
}
