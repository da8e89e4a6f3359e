package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegrio/portal-backend/internal/infrastructure/mailer"
	"github.com/pegrio/portal-backend/internal/infrastructure/outbox"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Email
	failTo map[string]int
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failTo: make(map[string]int)}
}

func (m *fakeMailer) Send(ctx context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remaining := m.failTo[email.To]; remaining != 0 {
		if remaining > 0 {
			m.failTo[email.To]--
		}
		return errors.New("provider unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var to []string
	for _, e := range m.sent {
		to = append(to, e.To)
	}
	return to
}

type fixedHealth bool

func (h fixedHealth) IsOnline() bool { return bool(h) }

func TestDispatcherDrainDelivers(t *testing.T) {
	store := openTestStore(t)
	mail := newFakeMailer()

	require.NoError(t, store.Enqueue(outbox.Item{To: "a@example.com", Subject: "first"}))
	require.NoError(t, store.Enqueue(outbox.Item{To: "b@example.com", Subject: "second"}))

	d := NewDispatcher(store, mail, nil, nil, DispatcherConfig{BatchSize: 10})
	require.NoError(t, d.Drain(context.Background()))

	assert.Len(t, mail.sentTo(), 2)
	assert.Equal(t, 0, d.Size())
}

func TestDispatcherRequeuesFailures(t *testing.T) {
	store := openTestStore(t)
	mail := newFakeMailer()
	mail.failTo["flaky@example.com"] = 1

	require.NoError(t, store.Enqueue(outbox.Item{To: "flaky@example.com", Subject: "retry me"}))

	d := NewDispatcher(store, mail, nil, nil, DispatcherConfig{BatchSize: 10, MaxRetries: 3})

	// first drain fails and requeues with a bumped retry counter
	require.NoError(t, d.Drain(context.Background()))
	assert.Empty(t, mail.sentTo())
	assert.Equal(t, 1, d.Size())

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)

	// second drain succeeds
	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, []string{"flaky@example.com"}, mail.sentTo())
	assert.Equal(t, 0, d.Size())
}

func TestDispatcherDropsAtMaxRetries(t *testing.T) {
	store := openTestStore(t)
	mail := newFakeMailer()
	mail.failTo["dead@example.com"] = -1 // fails forever

	require.NoError(t, store.Enqueue(outbox.Item{To: "dead@example.com", Subject: "doomed"}))

	d := NewDispatcher(store, mail, nil, nil, DispatcherConfig{BatchSize: 10, MaxRetries: 2})
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Drain(context.Background()))
	}

	assert.Empty(t, mail.sentTo())
	assert.Equal(t, 0, d.Size())
}

func TestDispatcherSkipsDrainWhenOffline(t *testing.T) {
	store := openTestStore(t)
	mail := newFakeMailer()

	require.NoError(t, store.Enqueue(outbox.Item{To: "a@example.com"}))

	d := NewDispatcher(store, mail, fixedHealth(false), nil, DispatcherConfig{BatchSize: 10})
	require.NoError(t, d.Drain(context.Background()))
	assert.Empty(t, mail.sentTo())
	assert.Equal(t, 1, d.Size())
}

func TestDispatcherHonorsPriorityOrder(t *testing.T) {
	store := openTestStore(t)
	mail := newFakeMailer()

	now := time.Now()
	require.NoError(t, store.Enqueue(outbox.Item{To: "low@example.com", Priority: 5, Timestamp: now}))
	require.NoError(t, store.Enqueue(outbox.Item{To: "high@example.com", Priority: 1, Timestamp: now}))

	d := NewDispatcher(store, mail, nil, nil, DispatcherConfig{BatchSize: 10})
	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, []string{"high@example.com", "low@example.com"}, mail.sentTo())
}
