package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

const orderColumns = `
	id, portal_token, customer_name, customer_email, business_name, phone,
	tier, maintenance_plan, add_ons, total_amount, deposit_amount, balance_amount,
	payment_status, status, intake_answers, revision_count, max_revisions,
	revision_notes, preview_url, delivery_type, delivered_at, created_at, updated_at`

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation of OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE portal_token = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, token))
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	query := `SELECT` + orderColumns + `
	FROM orders
	WHERE ($1 = '' OR status = $1)
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidPayload
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO orders (
		id, portal_token, customer_name, customer_email, business_name, phone,
		tier, maintenance_plan, add_ons, total_amount, deposit_amount, balance_amount,
		payment_status, status, intake_answers, revision_count, max_revisions, revision_notes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at`

	if err := r.pool.QueryRow(ctx, query,
		order.ID,
		order.PortalToken,
		order.CustomerName,
		order.CustomerEmail,
		order.BusinessName,
		order.Phone,
		order.Tier,
		order.MaintenancePlan,
		marshalJSON(order.AddOns),
		order.TotalAmount,
		order.DepositAmount,
		order.BalanceAmount,
		order.PaymentStatus,
		string(order.Status),
		marshalJSON(order.IntakeAnswers),
		order.RevisionCount,
		order.MaxRevisions,
		marshalJSON(order.RevisionNotes),
	).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) SaveIntake(ctx context.Context, id string, answers map[string]interface{}, status *domain.OrderStatus) error {
	const query = `
	UPDATE orders
	SET intake_answers = $2,
		status = COALESCE($3, status),
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at`

	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}

	var updated interface{}
	if err := r.pool.QueryRow(ctx, query, id, marshalJSON(answers), statusArg).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return err
	}
	return nil
}

// ApplyReview performs the review transition as a single conditional update.
// The WHERE clause pins both the reviewable status and the revision count the
// caller observed, so a concurrent submission makes this affect zero rows
// instead of silently overshooting the revision limit.
func (r *orderRepository) ApplyReview(ctx context.Context, id string, update repository.ReviewUpdate) error {
	const query = `
	UPDATE orders
	SET status = $2,
		revision_count = $3,
		revision_notes = CASE WHEN $4::jsonb IS NULL THEN revision_notes
			ELSE COALESCE(revision_notes, '[]'::jsonb) || $4::jsonb END,
		updated_at = NOW()
	WHERE id = $1
	  AND status = 'review'
	  AND revision_count = $5
	RETURNING updated_at`

	var noteArg interface{}
	if update.Note != nil {
		noteArg = marshalJSON(update.Note)
	}

	var updated interface{}
	err := r.pool.QueryRow(ctx, query,
		id,
		string(update.NewStatus),
		update.NewRevisionCount,
		noteArg,
		update.ExpectedRevisionCount,
	).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrReviewConflict
		}
		return err
	}
	return nil
}

func (r *orderRepository) AppendEvent(ctx context.Context, orderID, eventType string, details map[string]interface{}) (*domain.OrderEvent, error) {
	const query = `
	INSERT INTO order_events (id, order_id, event_type, details)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at`

	event := &domain.OrderEvent{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		EventType: eventType,
		Details:   details,
	}

	if err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.OrderID,
		event.EventType,
		marshalJSON(details),
	).Scan(&event.CreatedAt); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *orderRepository) ListEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	const query = `
	SELECT id, order_id, event_type, details, created_at
	FROM order_events
	WHERE order_id = $1
	ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var event domain.OrderEvent
		var details []byte
		if err := rows.Scan(&event.ID, &event.OrderID, &event.EventType, &details, &event.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &event.Details)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Order, error) {
	var order domain.Order
	var (
		status        string
		addOns        []byte
		intakeAnswers []byte
		revisionNotes []byte
	)

	if err := row.Scan(
		&order.ID,
		&order.PortalToken,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.BusinessName,
		&order.Phone,
		&order.Tier,
		&order.MaintenancePlan,
		&addOns,
		&order.TotalAmount,
		&order.DepositAmount,
		&order.BalanceAmount,
		&order.PaymentStatus,
		&status,
		&intakeAnswers,
		&order.RevisionCount,
		&order.MaxRevisions,
		&revisionNotes,
		&order.PreviewURL,
		&order.DeliveryType,
		&order.DeliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if len(addOns) > 0 {
		_ = json.Unmarshal(addOns, &order.AddOns)
	}
	if len(intakeAnswers) > 0 {
		_ = json.Unmarshal(intakeAnswers, &order.IntakeAnswers)
	}
	if len(revisionNotes) > 0 {
		_ = json.Unmarshal(revisionNotes, &order.RevisionNotes)
	}

	return &order, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
