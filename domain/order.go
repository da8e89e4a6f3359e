package domain

import "time"

// OrderStatus tracks where an order sits in the build/review lifecycle.
type OrderStatus string

const (
	StatusPaid      OrderStatus = "paid"
	StatusBuilding  OrderStatus = "building"
	StatusReview    OrderStatus = "review"
	StatusRevision  OrderStatus = "revision"
	StatusApproved  OrderStatus = "approved"
	StatusDelivered OrderStatus = "delivered"
)

// ReviewAction is a customer decision taken from the review screen.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionChanges ReviewAction = "changes"
	ActionFresh   ReviewAction = "fresh"
)

// IsValid reports whether the action is one of the three review verbs.
func (a ReviewAction) IsValid() bool {
	switch a {
	case ActionApprove, ActionChanges, ActionFresh:
		return true
	}
	return false
}

// DefaultMaxRevisions applies when an order row carries no explicit limit.
const DefaultMaxRevisions = 2

// Order represents one client website engagement.
type Order struct {
	ID              string                 `json:"id"`
	PortalToken     string                 `json:"portal_token"`
	CustomerName    string                 `json:"customer_name"`
	CustomerEmail   string                 `json:"customer_email"`
	BusinessName    string                 `json:"business_name,omitempty"`
	Phone           string                 `json:"phone,omitempty"`
	Tier            int                    `json:"tier"`
	MaintenancePlan string                 `json:"maintenance_plan,omitempty"`
	AddOns          []string               `json:"add_ons,omitempty"`
	TotalAmount     int64                  `json:"total_amount"`
	DepositAmount   int64                  `json:"deposit_amount"`
	BalanceAmount   int64                  `json:"balance_amount"`
	PaymentStatus   string                 `json:"payment_status"`
	Status          OrderStatus            `json:"status"`
	IntakeAnswers   map[string]interface{} `json:"intake_answers,omitempty"`
	RevisionCount   int                    `json:"revision_count"`
	MaxRevisions    int                    `json:"max_revisions"`
	RevisionNotes   []RevisionNote         `json:"revision_notes,omitempty"`
	PreviewURL      string                 `json:"preview_url,omitempty"`
	DeliveryType    string                 `json:"delivery_type,omitempty"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// IsReviewable reports whether review actions are currently allowed.
func (o *Order) IsReviewable() bool {
	return o != nil && o.Status == StatusReview
}

// RevisionLimit returns the effective revision ceiling for the order.
func (o *Order) RevisionLimit() int {
	if o == nil || o.MaxRevisions <= 0 {
		return DefaultMaxRevisions
	}
	return o.MaxRevisions
}

// RevisionsRemaining returns how many revision requests are still available.
func (o *Order) RevisionsRemaining() int {
	if o == nil {
		return 0
	}
	remaining := o.RevisionLimit() - o.RevisionCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RevisionNote is a single customer change request recorded against an order.
// Notes are append-only history; they are never edited or removed.
type RevisionNote struct {
	Type           ReviewAction `json:"type"`
	Notes          string       `json:"notes"`
	ReferenceURL   string       `json:"reference_url,omitempty"`
	SubmittedAt    time.Time    `json:"submitted_at"`
	RevisionNumber int          `json:"revision_number"`
}

// MergeAnswers shallow-merges incoming questionnaire answers over existing
// ones. Top-level keys from incoming win; everything else is preserved.
// Nested values are replaced wholesale, never merged recursively.
func MergeAnswers(existing, incoming map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
