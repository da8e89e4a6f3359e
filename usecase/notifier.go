package usecase

import "context"

// Notification kinds produced by the workflow. Each kind maps to one email
// template in the dispatch layer.
const (
	NotifyIntakeCustomer   = "intake_customer"
	NotifyIntakeAdmin      = "intake_admin"
	NotifyApprovedCustomer = "approved_customer"
	NotifyApprovedAdmin    = "approved_admin"
	NotifyRevisionCustomer = "revision_customer"
	NotifyRevisionAdmin    = "revision_admin"
)

// Notification is a rendered-later message handed to the outbox. Recipient may
// be empty for customer kinds when the order has no email on file; the
// dispatch layer drops those.
type Notification struct {
	Kind      string                 `json:"kind"`
	Recipient string                 `json:"recipient"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Notifier enqueues notifications for asynchronous delivery. Workflow code
// treats it as fire-and-forget: enqueue errors are logged and swallowed, never
// surfaced to the caller, because the state transition has already committed.
type Notifier interface {
	Enqueue(ctx context.Context, notification Notification) error
}
