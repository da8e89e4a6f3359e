package transport

import (
	"encoding/json"

	"github.com/pegrio/portal-backend/domain"
)

// Portal responses are flat rather than enveloped: their field names are the
// contract the portal front-end already depends on.

type OrderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

type OrderWithEventsResponse struct {
	Success bool                `json:"success"`
	Order   *domain.Order       `json:"order"`
	Events  []domain.OrderEvent `json:"events"`
}

type SaveIntakeResponse struct {
	Success   bool   `json:"success"`
	Submitted bool   `json:"submitted"`
	Message   string `json:"message"`
}

type SubmitReviewResponse struct {
	Success       bool   `json:"success"`
	Action        string `json:"action"`
	NewStatus     string `json:"newStatus"`
	RevisionCount *int   `json:"revision_count,omitempty"`
	MaxRevisions  *int   `json:"max_revisions,omitempty"`
	Remaining     *int   `json:"remaining,omitempty"`
	Message       string `json:"message"`
}

// ErrorResponse carries the short human-readable error plus whatever
// structured extras the failure class defines (current status for state
// errors, counts for revision-limit errors, detail in development mode).
type ErrorResponse struct {
	Error         string `json:"error"`
	CurrentStatus string `json:"currentStatus,omitempty"`
	RevisionCount *int   `json:"revision_count,omitempty"`
	MaxRevisions  *int   `json:"max_revisions,omitempty"`
	Message       string `json:"message,omitempty"`
	Details       string `json:"details,omitempty"`
}

// Envelope is the response wrapper used by the admin API.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
