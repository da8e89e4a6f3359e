package domain

import "time"

// Event types emitted by the portal workflow. The column is free-form text so
// new types can be added without a migration.
const (
	EventPaymentCompleted  = "payment_completed"
	EventIntakeSubmitted   = "intake_submitted"
	EventDesignApproved    = "design_approved"
	EventRevisionRequested = "revision_requested"
	EventRevisionFresh     = "revision_fresh_start"
)

// OrderEvent is one immutable audit-log entry for an order. Events are only
// ever appended; the timeline view reads them back in created_at order.
type OrderEvent struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	EventType string                 `json:"event_type"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
