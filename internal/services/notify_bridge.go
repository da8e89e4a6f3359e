package services

import (
	"context"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/internal/infrastructure/outbox"
	"github.com/pegrio/portal-backend/usecase"
)

// NotifyBridge implements the workflow's Notifier port on top of the outbox.
// It renders the notification into a deliverable email and persists it; the
// dispatcher picks it up asynchronously.
type NotifyBridge struct {
	store      *outbox.Store
	adminEmail string
}

func NewNotifyBridge(store *outbox.Store, adminEmail string) *NotifyBridge {
	return &NotifyBridge{
		store:      store,
		adminEmail: adminEmail,
	}
}

func (b *NotifyBridge) Enqueue(ctx context.Context, n usecase.Notification) error {
	if b.store == nil {
		return domain.NewError(domain.ErrCodeInternal, "outbox not configured")
	}

	to := n.Recipient
	if isAdminKind(n.Kind) {
		to = b.adminEmail
	}
	if to == "" {
		// Customer notification without an email on file; nothing to deliver.
		return nil
	}

	subject, body := renderNotification(n)
	return b.store.Enqueue(outbox.Item{
		Kind:     n.Kind,
		To:       to,
		Subject:  subject,
		HTML:     body,
		Priority: 3,
	})
}

func isAdminKind(kind string) bool {
	switch kind {
	case usecase.NotifyIntakeAdmin, usecase.NotifyApprovedAdmin, usecase.NotifyRevisionAdmin:
		return true
	}
	return false
}

var _ usecase.Notifier = (*NotifyBridge)(nil)
