package review

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository/memory"
	"github.com/pegrio/portal-backend/usecase"
)

type captureNotifier struct {
	sent []usecase.Notification
	err  error
}

func (n *captureNotifier) Enqueue(ctx context.Context, notification usecase.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func seedOrder(t *testing.T, repo *memory.OrderRepository, order *domain.Order) *domain.Order {
	t.Helper()
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func resetToReview(t *testing.T, repo *memory.OrderRepository, id string) {
	t.Helper()
	order, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	order.Status = domain.StatusReview
	repo.Put(order)
}

func TestSubmitReviewValidation(t *testing.T) {
	uc := New(memory.NewOrderRepository(), nil, nil, "", nil)

	_, err := uc.SubmitReview(context.Background(), "", domain.ActionApprove, "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.SubmitReview(context.Background(), "tok", domain.ReviewAction("reject"), "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.SubmitReview(context.Background(), "unknown", domain.ActionApprove, "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestSubmitReviewGate(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.StatusPaid, domain.StatusBuilding, domain.StatusRevision, domain.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			repo := memory.NewOrderRepository()
			order := seedOrder(t, repo, &domain.Order{
				PortalToken:   "tok-gate",
				Status:        status,
				RevisionCount: 1,
				MaxRevisions:  2,
			})

			uc := New(repo, nil, nil, "", nil)
			_, err := uc.SubmitReview(context.Background(), "tok-gate", domain.ActionChanges, "notes", "")

			var stateErr *domain.StateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, status, stateErr.Status)

			stored, getErr := repo.GetByID(context.Background(), order.ID)
			require.NoError(t, getErr)
			assert.Equal(t, status, stored.Status)
			assert.Equal(t, 1, stored.RevisionCount)
			assert.Empty(t, stored.RevisionNotes)

			events, listErr := repo.ListEvents(context.Background(), order.ID)
			require.NoError(t, listErr)
			assert.Empty(t, events)
		})
	}
}

func TestSubmitReviewApprove(t *testing.T) {
	repo := memory.NewOrderRepository()
	notifier := &captureNotifier{}
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:   "tok-approve",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Status:        domain.StatusReview,
		RevisionCount: 1,
		MaxRevisions:  2,
	})

	uc := New(repo, nil, notifier, "", nil)
	result, err := uc.SubmitReview(context.Background(), "tok-approve", domain.ActionApprove, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApprove, result.Action)
	assert.Equal(t, domain.StatusApproved, result.NewStatus)
	assert.Equal(t, "Design approved successfully", result.Message)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Equal(t, 1, stored.RevisionCount)

	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDesignApproved, events[0].EventType)
	assert.Equal(t, 1, events[0].Details["revision_count"])

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, usecase.NotifyApprovedCustomer, notifier.sent[0].Kind)
	assert.Equal(t, usecase.NotifyApprovedAdmin, notifier.sent[1].Kind)
}

func TestSubmitReviewChangesScenario(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:   "tok-changes",
		Status:        domain.StatusReview,
		RevisionCount: 1,
		MaxRevisions:  2,
	})

	uc := New(repo, nil, nil, "", nil)
	result, err := uc.SubmitReview(context.Background(), "tok-changes", domain.ActionChanges, "Make logo bigger", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionChanges, result.Action)
	assert.Equal(t, domain.StatusRevision, result.NewStatus)
	assert.Equal(t, 2, result.RevisionCount)
	assert.Equal(t, 2, result.MaxRevisions)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, "Change request submitted", result.Message)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevision, stored.Status)
	assert.Equal(t, 2, stored.RevisionCount)
	require.Len(t, stored.RevisionNotes, 1)
	note := stored.RevisionNotes[0]
	assert.Equal(t, domain.ActionChanges, note.Type)
	assert.Equal(t, "Make logo bigger", note.Notes)
	assert.Equal(t, 2, note.RevisionNumber)

	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventRevisionRequested, events[0].EventType)
	assert.Equal(t, 0, events[0].Details["remaining"])
	assert.Equal(t, 2, events[0].Details["revision_number"])

	// a second attempt without resetting the status is rejected
	_, err = uc.SubmitReview(context.Background(), "tok-changes", domain.ActionChanges, "", "")
	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StatusRevision, stateErr.Status)
}

func TestSubmitReviewFresh(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:  "tok-fresh",
		Status:       domain.StatusReview,
		MaxRevisions: 2,
	})

	uc := New(repo, nil, nil, "", nil)
	result, err := uc.SubmitReview(context.Background(), "tok-fresh", domain.ActionFresh, "start over", "https://example.com/inspo")
	require.NoError(t, err)
	assert.Equal(t, "Fresh start request submitted", result.Message)
	assert.Equal(t, 1, result.RevisionCount)
	assert.Equal(t, 1, result.Remaining)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.RevisionNotes, 1)
	assert.Equal(t, domain.ActionFresh, stored.RevisionNotes[0].Type)
	assert.Equal(t, "https://example.com/inspo", stored.RevisionNotes[0].ReferenceURL)

	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventRevisionFresh, events[0].EventType)
}

func TestSubmitReviewRevisionCap(t *testing.T) {
	const maxRevisions = 3

	repo := memory.NewOrderRepository()
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:  "tok-cap",
		Status:       domain.StatusReview,
		MaxRevisions: maxRevisions,
	})

	uc := New(repo, nil, nil, "support@pegrio.com", nil)

	for i := 1; i <= maxRevisions; i++ {
		result, err := uc.SubmitReview(context.Background(), "tok-cap", domain.ActionChanges, fmt.Sprintf("round %d", i), "")
		require.NoError(t, err)
		assert.Equal(t, i, result.RevisionCount)
		assert.Equal(t, maxRevisions-i, result.Remaining)
		resetToReview(t, repo, order.ID)
	}

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.RevisionNotes, maxRevisions)
	for i, note := range stored.RevisionNotes {
		assert.Equal(t, i+1, note.RevisionNumber)
	}

	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, events, maxRevisions)

	// the cap is hard: one more request fails without touching anything
	_, err = uc.SubmitReview(context.Background(), "tok-cap", domain.ActionChanges, "one more", "")
	var limitErr *domain.RevisionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, maxRevisions, limitErr.Count)
	assert.Equal(t, maxRevisions, limitErr.Limit)
	assert.Contains(t, limitErr.Message, "support@pegrio.com")

	after, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, maxRevisions, after.RevisionCount)
	assert.Len(t, after.RevisionNotes, maxRevisions)

	events, err = repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, events, maxRevisions)
}

func TestSubmitReviewDefaultLimit(t *testing.T) {
	repo := memory.NewOrderRepository()
	seedOrder(t, repo, &domain.Order{
		PortalToken:   "tok-default",
		Status:        domain.StatusReview,
		RevisionCount: domain.DefaultMaxRevisions,
		// MaxRevisions left unset
	})

	uc := New(repo, nil, nil, "", nil)
	_, err := uc.SubmitReview(context.Background(), "tok-default", domain.ActionChanges, "", "")

	var limitErr *domain.RevisionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, domain.DefaultMaxRevisions, limitErr.Limit)
}

func TestSubmitReviewNotifierFailureDoesNotAffectResult(t *testing.T) {
	repo := memory.NewOrderRepository()
	notifier := &captureNotifier{err: errors.New("provider down")}
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:  "tok-iso",
		Status:       domain.StatusReview,
		MaxRevisions: 2,
	})

	uc := New(repo, nil, notifier, "", nil)
	result, err := uc.SubmitReview(context.Background(), "tok-iso", domain.ActionChanges, "n", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RevisionCount)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevision, stored.Status)
	assert.Equal(t, 1, stored.RevisionCount)
}
