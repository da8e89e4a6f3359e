package repository

import (
	"context"

	"github.com/pegrio/portal-backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.AdminSession, error)
	Save(ctx context.Context, session *domain.AdminSession) error
	Delete(ctx context.Context, id string) error
}

// OrderCache is a token-keyed snapshot cache in front of the order store,
// serving the read-heavy verify-token path. Mutating use cases invalidate
// entries after commit.
type OrderCache interface {
	Get(ctx context.Context, token string) (*domain.Order, error)
	Set(ctx context.Context, order *domain.Order) error
	Invalidate(ctx context.Context, token string) error
}
