package review

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
	"github.com/pegrio/portal-backend/usecase"
)

const defaultSupportEmail = "support@pegrio.com"

// Result reports a successful review transition. RevisionCount, MaxRevisions
// and Remaining are only meaningful for changes/fresh actions.
type Result struct {
	Action        domain.ReviewAction
	NewStatus     domain.OrderStatus
	RevisionCount int
	MaxRevisions  int
	Remaining     int
	Message       string
}

type UseCase struct {
	orders       repository.OrderRepository
	cache        repository.OrderCache
	notifier     usecase.Notifier
	supportEmail string
	logger       *zap.Logger
}

func New(orders repository.OrderRepository, cache repository.OrderCache, notifier usecase.Notifier, supportEmail string, logger *zap.Logger) *UseCase {
	if supportEmail == "" {
		supportEmail = defaultSupportEmail
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders:       orders,
		cache:        cache,
		notifier:     notifier,
		supportEmail: supportEmail,
		logger:       logger,
	}
}

// SubmitReview applies a customer review decision to an order in review
// status. approve moves the order to approved; changes and fresh consume one
// revision, bounded by the order's revision limit. The underlying update is
// conditional on the status and revision count observed here, so a concurrent
// submission cannot push the count past the limit; on conflict the order is
// re-read and re-validated once before giving up.
func (uc *UseCase) SubmitReview(ctx context.Context, token string, action domain.ReviewAction, notes, referenceURL string) (*Result, error) {
	if token == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "Token is required")
	}
	if !action.IsValid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "Valid action is required (approve, changes, fresh)")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		order, err := uc.orders.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}

		if !order.IsReviewable() {
			return nil, &domain.StateError{Status: order.Status}
		}

		var result *Result
		if action == domain.ActionApprove {
			result, err = uc.approve(ctx, order)
		} else {
			result, err = uc.requestRevision(ctx, order, action, notes, referenceURL)
		}
		if err == domain.ErrReviewConflict {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		uc.invalidate(ctx, token)
		return result, nil
	}
	return nil, lastErr
}

func (uc *UseCase) approve(ctx context.Context, order *domain.Order) (*Result, error) {
	update := repository.ReviewUpdate{
		NewStatus:             domain.StatusApproved,
		ExpectedRevisionCount: order.RevisionCount,
		NewRevisionCount:      order.RevisionCount,
	}
	if err := uc.orders.ApplyReview(ctx, order.ID, update); err != nil {
		return nil, err
	}

	if _, err := uc.orders.AppendEvent(ctx, order.ID, domain.EventDesignApproved, map[string]interface{}{
		"message":        "Client approved the design",
		"revision_count": order.RevisionCount,
	}); err != nil {
		return nil, err
	}

	uc.notify(ctx, usecase.Notification{
		Kind:      usecase.NotifyApprovedCustomer,
		Recipient: order.CustomerEmail,
		Data: map[string]interface{}{
			"customer_name": order.CustomerName,
			"business_name": order.BusinessName,
		},
	})
	uc.notify(ctx, usecase.Notification{
		Kind: usecase.NotifyApprovedAdmin,
		Data: map[string]interface{}{
			"customer_name": order.CustomerName,
			"business_name": order.BusinessName,
			"tier":          order.Tier,
		},
	})

	return &Result{
		Action:    domain.ActionApprove,
		NewStatus: domain.StatusApproved,
		Message:   "Design approved successfully",
	}, nil
}

func (uc *UseCase) requestRevision(ctx context.Context, order *domain.Order, action domain.ReviewAction, notes, referenceURL string) (*Result, error) {
	limit := order.RevisionLimit()
	if order.RevisionCount >= limit {
		return nil, &domain.RevisionLimitError{
			Count: order.RevisionCount,
			Limit: limit,
			Message: fmt.Sprintf(
				"You have used all %d revisions. Additional revisions are $250 each. Please contact us at %s.",
				limit, uc.supportEmail),
		}
	}

	newCount := order.RevisionCount + 1
	remaining := limit - newCount
	note := domain.RevisionNote{
		Type:           action,
		Notes:          notes,
		ReferenceURL:   referenceURL,
		SubmittedAt:    time.Now().UTC(),
		RevisionNumber: newCount,
	}

	update := repository.ReviewUpdate{
		NewStatus:             domain.StatusRevision,
		ExpectedRevisionCount: order.RevisionCount,
		NewRevisionCount:      newCount,
		Note:                  &note,
	}
	if err := uc.orders.ApplyReview(ctx, order.ID, update); err != nil {
		return nil, err
	}

	eventType := domain.EventRevisionRequested
	message := "Client requested design changes"
	resultMessage := "Change request submitted"
	if action == domain.ActionFresh {
		eventType = domain.EventRevisionFresh
		message = "Client requested a fresh start"
		resultMessage = "Fresh start request submitted"
	}

	if _, err := uc.orders.AppendEvent(ctx, order.ID, eventType, map[string]interface{}{
		"message":         message,
		"notes":           notes,
		"reference_url":   referenceURL,
		"revision_number": newCount,
		"remaining":       remaining,
	}); err != nil {
		return nil, err
	}

	uc.notify(ctx, usecase.Notification{
		Kind: usecase.NotifyRevisionAdmin,
		Data: map[string]interface{}{
			"customer_name":   order.CustomerName,
			"business_name":   order.BusinessName,
			"tier":            order.Tier,
			"action":          string(action),
			"notes":           notes,
			"reference_url":   referenceURL,
			"revision_number": newCount,
		},
	})
	uc.notify(ctx, usecase.Notification{
		Kind:      usecase.NotifyRevisionCustomer,
		Recipient: order.CustomerEmail,
		Data: map[string]interface{}{
			"customer_name": order.CustomerName,
			"business_name": order.BusinessName,
		},
	})

	return &Result{
		Action:        action,
		NewStatus:     domain.StatusRevision,
		RevisionCount: newCount,
		MaxRevisions:  limit,
		Remaining:     remaining,
		Message:       resultMessage,
	}, nil
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
