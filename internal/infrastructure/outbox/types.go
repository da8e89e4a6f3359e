package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Item is one pending email delivery. Items are rendered before they are
// enqueued so the dispatcher only has to hand them to the mailer.
type Item struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id,omitempty"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	Priority  int       `json:"priority"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
