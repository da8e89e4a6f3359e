package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

// NewOrder carries the fields the payment webhook supplies when a checkout
// completes.
type NewOrder struct {
	CustomerName    string
	CustomerEmail   string
	BusinessName    string
	Phone           string
	Tier            int
	MaintenancePlan string
	AddOns          []string
	TotalAmount     int64
	DepositAmount   int64
	PortalToken     string
}

type UseCase struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func New(orders repository.OrderRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{orders: orders, logger: logger}
}

// CreateOrder registers a freshly-paid engagement. The portal token doubles as
// the customer's only credential, so it is generated here unless the checkout
// flow pre-allocated one. The revision ceiling scales with the tier, clamped
// to 1..3.
func (uc *UseCase) CreateOrder(ctx context.Context, input NewOrder) (*domain.Order, error) {
	if input.CustomerName == "" || input.CustomerEmail == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "customer name and email are required")
	}
	if input.Tier < 1 || input.Tier > 3 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "tier must be between 1 and 3")
	}

	token := input.PortalToken
	if token == "" {
		token = uuid.NewString()
	}

	created, err := uc.orders.Create(ctx, &domain.Order{
		PortalToken:     token,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		BusinessName:    input.BusinessName,
		Phone:           input.Phone,
		Tier:            input.Tier,
		MaintenancePlan: input.MaintenancePlan,
		AddOns:          input.AddOns,
		TotalAmount:     input.TotalAmount,
		DepositAmount:   input.DepositAmount,
		BalanceAmount:   input.TotalAmount - input.DepositAmount,
		PaymentStatus:   "paid",
		Status:          domain.StatusPaid,
		MaxRevisions:    input.Tier,
	})
	if err != nil {
		return nil, err
	}

	if _, err := uc.orders.AppendEvent(ctx, created.ID, domain.EventPaymentCompleted, map[string]interface{}{
		"total_amount":     input.TotalAmount,
		"deposit_amount":   input.DepositAmount,
		"tier":             input.Tier,
		"maintenance_plan": input.MaintenancePlan,
	}); err != nil {
		uc.logger.Error("failed to append payment event", zap.String("order_id", created.ID), zap.Error(err))
	}

	uc.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.Int("tier", created.Tier))
	return created, nil
}
