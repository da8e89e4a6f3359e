package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository/memory"
)

func TestCreateOrderValidation(t *testing.T) {
	uc := New(memory.NewOrderRepository(), nil)

	cases := []struct {
		name  string
		input NewOrder
	}{
		{"missing name", NewOrder{CustomerEmail: "a@b.com", Tier: 1}},
		{"missing email", NewOrder{CustomerName: "Ada", Tier: 1}},
		{"tier too low", NewOrder{CustomerName: "Ada", CustomerEmail: "a@b.com", Tier: 0}},
		{"tier too high", NewOrder{CustomerName: "Ada", CustomerEmail: "a@b.com", Tier: 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateOrder(context.Background(), tc.input)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}
}

func TestCreateOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	uc := New(repo, nil)

	created, err := uc.CreateOrder(context.Background(), NewOrder{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		BusinessName:    "Analytical Engines",
		Tier:            2,
		MaintenancePlan: "standard",
		AddOns:          []string{"logo"},
		TotalAmount:     150000,
		DepositAmount:   50000,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.PortalToken)
	assert.Equal(t, domain.StatusPaid, created.Status)
	assert.Equal(t, "paid", created.PaymentStatus)
	assert.Equal(t, 2, created.MaxRevisions)
	assert.Equal(t, int64(100000), created.BalanceAmount)
	assert.Equal(t, 0, created.RevisionCount)

	// the order is reachable through its token
	byToken, err := repo.GetByToken(context.Background(), created.PortalToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byToken.ID)

	events, err := repo.ListEvents(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventPaymentCompleted, events[0].EventType)
	assert.Equal(t, 2, events[0].Details["tier"])
}

func TestCreateOrderKeepsProvidedToken(t *testing.T) {
	uc := New(memory.NewOrderRepository(), nil)

	created, err := uc.CreateOrder(context.Background(), NewOrder{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Tier:          1,
		PortalToken:   "pre-allocated-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "pre-allocated-token", created.PortalToken)
	assert.Equal(t, 1, created.MaxRevisions)
}

func TestCreateOrderDistinctTokens(t *testing.T) {
	uc := New(memory.NewOrderRepository(), nil)

	first, err := uc.CreateOrder(context.Background(), NewOrder{
		CustomerName: "A", CustomerEmail: "a@example.com", Tier: 3,
	})
	require.NoError(t, err)
	second, err := uc.CreateOrder(context.Background(), NewOrder{
		CustomerName: "B", CustomerEmail: "b@example.com", Tier: 3,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.PortalToken, second.PortalToken)
}
