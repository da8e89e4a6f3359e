package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/internal/infrastructure/mailer"
	"github.com/pegrio/portal-backend/internal/infrastructure/outbox"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DispatcherConfig controls how frequently the outbox is drained.
type DispatcherConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Dispatcher drains the notification outbox and delivers pending emails.
// Failed deliveries are requeued with a retry counter and dropped once the
// counter reaches the configured maximum. Delivery problems never reach the
// request path; the workflow only ever enqueues.
type Dispatcher struct {
	store   *outbox.Store
	mail    mailer.Mailer
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     DispatcherConfig
}

func NewDispatcher(store *outbox.Store, mail mailer.Mailer, monitor ConnectionHealth, logger *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		store:   store,
		mail:    mail,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return d
}

// Start launches the cron scheduler.
func (d *Dispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("notification dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *Dispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("notification dispatcher stopped")
}

// Drain delivers pending items synchronously.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}
	if d.monitor != nil && !d.monitor.IsOnline() {
		d.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := d.mail.Send(ctx, mailer.Email{
			To:      item.To,
			Subject: item.Subject,
			HTML:    item.HTML,
		}); err != nil {
			d.logger.Error("failed to deliver notification",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Error(err))

			item.Retries++
			if item.Retries >= d.cfg.MaxRetries {
				d.logger.Warn("dropping notification (max retries reached)",
					zap.String("item_id", item.ID),
					zap.String("kind", item.Kind))
				_ = d.store.Remove(item)
				continue
			}

			if err := d.store.Remove(item); err != nil {
				d.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := d.store.Requeue(item); err != nil {
				d.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := d.store.Remove(item); err != nil {
			d.logger.Warn("failed to purge delivered item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending deliveries.
func (d *Dispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}
