package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

// OrderRepository is an in-memory OrderRepository with the same conditional
// update semantics as the Postgres implementation. It backs the use case test
// suites and local development without a database.
type OrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	byToken map[string]string
	events  map[string][]domain.OrderEvent
	seq     int
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:  make(map[string]*domain.Order),
		byToken: make(map[string]string),
		events:  make(map[string][]domain.OrderEvent),
	}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *OrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(r.orders[id]), nil
}

func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []domain.Order
	for _, order := range r.orders {
		if filter.Status != "" && string(order.Status) != filter.Status {
			continue
		}
		orders = append(orders, *cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	r.orders[order.ID] = cloneOrder(order)
	r.byToken[order.PortalToken] = order.ID
	return cloneOrder(order), nil
}

func (r *OrderRepository) SaveIntake(ctx context.Context, id string, answers map[string]interface{}, status *domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.IntakeAnswers = answers
	if status != nil {
		order.Status = *status
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepository) ApplyReview(ctx context.Context, id string, update repository.ReviewUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != domain.StatusReview || order.RevisionCount != update.ExpectedRevisionCount {
		return domain.ErrReviewConflict
	}

	order.Status = update.NewStatus
	order.RevisionCount = update.NewRevisionCount
	if update.Note != nil {
		order.RevisionNotes = append(order.RevisionNotes, *update.Note)
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepository) AppendEvent(ctx context.Context, orderID, eventType string, details map[string]interface{}) (*domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return nil, domain.ErrOrderNotFound
	}

	r.seq++
	event := domain.OrderEvent{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		EventType: eventType,
		Details:   details,
		CreatedAt: time.Now(),
	}
	r.events[orderID] = append(r.events[orderID], event)
	return &event, nil
}

// SeedEvent inserts an event with a caller-controlled timestamp, bypassing
// AppendEvent. Tests use it to build out-of-order timelines.
func (r *OrderRepository) SeedEvent(event domain.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.events[event.OrderID] = append(r.events[event.OrderID], event)
}

func (r *OrderRepository) ListEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := append([]domain.OrderEvent(nil), r.events[orderID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

// Put replaces an order wholesale. Tests use it to force a status between
// workflow calls.
func (r *OrderRepository) Put(order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(order)
	r.byToken[order.PortalToken] = order.ID
}

func cloneOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	clone := *order
	if order.IntakeAnswers != nil {
		clone.IntakeAnswers = make(map[string]interface{}, len(order.IntakeAnswers))
		for k, v := range order.IntakeAnswers {
			clone.IntakeAnswers[k] = v
		}
	}
	clone.AddOns = append([]string(nil), order.AddOns...)
	clone.RevisionNotes = append([]domain.RevisionNote(nil), order.RevisionNotes...)
	return &clone
}
