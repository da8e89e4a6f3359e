package repository

import (
	"context"

	"github.com/pegrio/portal-backend/domain"
)

type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// ReviewUpdate describes an atomic review transition. The repository must only
// apply it when the row still has status=review and the expected revision
// count; otherwise it returns domain.ErrReviewConflict. This is what keeps two
// concurrent review submissions from both passing the revision-limit check.
type ReviewUpdate struct {
	NewStatus             domain.OrderStatus
	ExpectedRevisionCount int
	NewRevisionCount      int
	Note                  *domain.RevisionNote
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByToken(ctx context.Context, token string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	SaveIntake(ctx context.Context, id string, answers map[string]interface{}, status *domain.OrderStatus) error
	ApplyReview(ctx context.Context, id string, update ReviewUpdate) error
	AppendEvent(ctx context.Context, orderID, eventType string, details map[string]interface{}) (*domain.OrderEvent, error)
	ListEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}
