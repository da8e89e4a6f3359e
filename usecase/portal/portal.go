package portal

import (
	"context"

	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

// UseCase serves the read-only portal operations: token verification and the
// order + timeline view.
type UseCase struct {
	orders repository.OrderRepository
	cache  repository.OrderCache
	logger *zap.Logger
}

func New(orders repository.OrderRepository, cache repository.OrderCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders: orders,
		cache:  cache,
		logger: logger,
	}
}

// VerifyToken resolves a portal token to its order. Reads are served from the
// Redis snapshot cache when warm; misses fall through to Postgres and
// back-fill the cache. No side effects on the order itself.
func (uc *UseCase) VerifyToken(ctx context.Context, token string) (*domain.Order, error) {
	if token == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "Token is required")
	}

	if uc.cache != nil {
		if order, err := uc.cache.Get(ctx, token); err == nil {
			return order, nil
		} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Warn("order cache read failed", zap.Error(err))
		}
	}

	order, err := uc.orders.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, order); err != nil {
			uc.logger.Warn("order cache write failed", zap.Error(err))
		}
	}
	return order, nil
}

// GetOrder returns the order plus its full event timeline, ordered ascending
// by creation time.
func (uc *UseCase) GetOrder(ctx context.Context, token string) (*domain.Order, []domain.OrderEvent, error) {
	order, err := uc.VerifyToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	events, err := uc.orders.ListEvents(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, events, nil
}
