package intake

import (
	"context"

	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
	"github.com/pegrio/portal-backend/usecase"
)

// TransitionPolicy decides which statuses a final intake submission may move
// to "building" from. The shipped default allows any status, matching the
// portal's historical behavior where re-submitting the questionnaire rewinds
// the order; deployments that want a guard inject a stricter policy.
type TransitionPolicy func(current domain.OrderStatus) bool

// AllowAnyStatus is the default submission policy.
func AllowAnyStatus(domain.OrderStatus) bool { return true }

// Result reports the outcome of an intake save.
type Result struct {
	Submitted bool
	Message   string
}

type UseCase struct {
	orders   repository.OrderRepository
	cache    repository.OrderCache
	notifier usecase.Notifier
	policy   TransitionPolicy
	logger   *zap.Logger
}

func New(orders repository.OrderRepository, cache repository.OrderCache, notifier usecase.Notifier, policy TransitionPolicy, logger *zap.Logger) *UseCase {
	if policy == nil {
		policy = AllowAnyStatus
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders:   orders,
		cache:    cache,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
	}
}

// SaveIntake merges the given answers into the order's questionnaire. Keys in
// answers overwrite stored keys; everything else is preserved (shallow merge).
// With submit=true the order also moves to "building" and an intake_submitted
// event plus customer/admin notifications are produced. Side effects are
// strictly ordered: order write, event append, notification enqueue. Only the
// first two gate success.
func (uc *UseCase) SaveIntake(ctx context.Context, token string, answers map[string]interface{}, submit bool) (*Result, error) {
	if token == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "Token is required")
	}
	if answers == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "Answers object is required")
	}

	order, err := uc.orders.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := domain.MergeAnswers(order.IntakeAnswers, answers)

	if !submit {
		if err := uc.orders.SaveIntake(ctx, order.ID, merged, nil); err != nil {
			return nil, err
		}
		uc.invalidate(ctx, token)
		return &Result{Submitted: false, Message: "Draft saved"}, nil
	}

	if !uc.policy(order.Status) {
		return nil, &domain.StateError{Status: order.Status}
	}

	building := domain.StatusBuilding
	if err := uc.orders.SaveIntake(ctx, order.ID, merged, &building); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, token)

	if _, err := uc.orders.AppendEvent(ctx, order.ID, domain.EventIntakeSubmitted, map[string]interface{}{
		"message": "Client completed the intake questionnaire",
		"tier":    order.Tier,
	}); err != nil {
		return nil, err
	}

	uc.notify(ctx, usecase.Notification{
		Kind:      usecase.NotifyIntakeCustomer,
		Recipient: order.CustomerEmail,
		Data: map[string]interface{}{
			"customer_name": order.CustomerName,
			"business_name": order.BusinessName,
		},
	})
	uc.notify(ctx, usecase.Notification{
		Kind: usecase.NotifyIntakeAdmin,
		Data: map[string]interface{}{
			"customer_name":  order.CustomerName,
			"customer_email": order.CustomerEmail,
			"business_name":  order.BusinessName,
			"tier":           order.Tier,
			"answers":        merged,
		},
	})

	return &Result{Submitted: true, Message: "Questionnaire submitted successfully"}, nil
}

func (uc *UseCase) notify(ctx context.Context, notification usecase.Notification) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Enqueue(ctx, notification); err != nil {
		uc.logger.Error("failed to enqueue notification",
			zap.String("kind", notification.Kind),
			zap.Error(err))
	}
}

func (uc *UseCase) invalidate(ctx context.Context, token string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, token); err != nil {
		uc.logger.Warn("failed to invalidate order cache", zap.Error(err))
	}
}
