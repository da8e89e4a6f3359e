package intake

import (
	"context"
	"errors"
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

func TestSaveIntakeValidation(t *testing.T) {
	uc := New(memory.NewOrderRepository(), nil, nil, nil, nil)

	_, err := uc.SaveIntake(context.Background(), "", map[string]interface{}{}, false)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.SaveIntake(context.Background(), "tok", nil, false)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.SaveIntake(context.Background(), "unknown", map[string]interface{}{}, false)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestSaveIntakeDraftMergesShallow(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := seedOrder(t, repo, &domain.Order{
		PortalToken: "tok-1",
		Status:      domain.StatusReview,
		IntakeAnswers: map[string]interface{}{
			"goal":   "bookings",
			"colors": "blue",
		},
	})

	uc := New(repo, nil, nil, nil, nil)
	result, err := uc.SaveIntake(context.Background(), "tok-1", map[string]interface{}{
		"colors": "green",
		"pages":  5,
	}, false)
	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.Equal(t, "Draft saved", result.Message)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"goal":   "bookings",
		"colors": "green",
		"pages":  5,
	}, stored.IntakeAnswers)

	// draft saves never touch the status and never emit events
	assert.Equal(t, domain.StatusReview, stored.Status)
	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSaveIntakeDraftAllowsEmptyAnswers(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := seedOrder(t, repo, &domain.Order{
		PortalToken:   "tok-2",
		Status:        domain.StatusPaid,
		IntakeAnswers: map[string]interface{}{"goal": "leads"},
	})

	uc := New(repo, nil, nil, nil, nil)
	_, err := uc.SaveIntake(context.Background(), "tok-2", map[string]interface{}{}, false)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"goal": "leads"}, stored.IntakeAnswers)
}

func TestSaveIntakeSubmitTransitionsToBuilding(t *testing.T) {
	for _, prior := range []domain.OrderStatus{domain.StatusPaid, domain.StatusReview, domain.StatusRevision, domain.StatusApproved} {
		t.Run(string(prior), func(t *testing.T) {
			repo := memory.NewOrderRepository()
			notifier := &captureNotifier{}
			order := seedOrder(t, repo, &domain.Order{
				PortalToken:   "tok-3",
				CustomerName:  "Ada",
				CustomerEmail: "ada@example.com",
				Tier:          2,
				Status:        prior,
			})

			uc := New(repo, nil, notifier, nil, nil)
			result, err := uc.SaveIntake(context.Background(), "tok-3", map[string]interface{}{"goal": "sales"}, true)
			require.NoError(t, err)
			assert.True(t, result.Submitted)
			assert.Equal(t, "Questionnaire submitted successfully", result.Message)

			stored, err := repo.GetByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusBuilding, stored.Status)

			events, err := repo.ListEvents(context.Background(), order.ID)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventIntakeSubmitted, events[0].EventType)
			assert.Equal(t, 2, events[0].Details["tier"])

			require.Len(t, notifier.sent, 2)
			assert.Equal(t, usecase.NotifyIntakeCustomer, notifier.sent[0].Kind)
			assert.Equal(t, "ada@example.com", notifier.sent[0].Recipient)
			assert.Equal(t, usecase.NotifyIntakeAdmin, notifier.sent[1].Kind)
			assert.Equal(t, map[string]interface{}{"goal": "sales"}, notifier.sent[1].Data["answers"])
		})
	}
}

func TestSaveIntakeSubmitRespectsPolicy(t *testing.T) {
	repo := memory.NewOrderRepository()
	seedOrder(t, repo, &domain.Order{
		PortalToken: "tok-4",
		Status:      domain.StatusApproved,
	})

	onlyBeforeReview := func(current domain.OrderStatus) bool {
		return current == domain.StatusPaid || current == domain.StatusBuilding
	}

	uc := New(repo, nil, nil, onlyBeforeReview, nil)
	_, err := uc.SaveIntake(context.Background(), "tok-4", map[string]interface{}{}, true)

	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StatusApproved, stateErr.Status)
}

func TestSaveIntakeNotifierFailureDoesNotAffectResult(t *testing.T) {
	repo := memory.NewOrderRepository()
	notifier := &captureNotifier{err: errors.New("smtp down")}
	order := seedOrder(t, repo, &domain.Order{
		PortalToken: "tok-5",
		Status:      domain.StatusPaid,
	})

	uc := New(repo, nil, notifier, nil, nil)
	result, err := uc.SaveIntake(context.Background(), "tok-5", map[string]interface{}{"goal": "x"}, true)
	require.NoError(t, err)
	assert.True(t, result.Submitted)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBuilding, stored.Status)

	events, err := repo.ListEvents(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
