package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"olilab/metrics"
	"olilab/models"
	"olilab/store"
)

// Notifier receives committed notification records for delivery elsewhere.
// Delivery failures never affect workflow state.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification) error
}

const DefaultLoanPeriodDays = 7

// Engine coordinates all workflow operations over a persistence backend.
type Engine struct {
	store      store.Store
	notifier   Notifier
	clock      func() time.Time
	loanPeriod time.Duration
	newID      func() string
}

// Options tune an Engine; zero values fall back to defaults.
type Options struct {
	Notifier       Notifier // nil disables fan-out
	LoanPeriodDays int
	Clock          func() time.Time // overridable in tests
}

func New(st store.Store, opts Options) *Engine {
	days := opts.LoanPeriodDays
	if days <= 0 {
		days = DefaultLoanPeriodDays
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		store:      st,
		notifier:   opts.Notifier,
		clock:      clock,
		loanPeriod: time.Duration(days) * 24 * time.Hour,
		newID:      uuid.NewString,
	}
}

// emitFn stamps and stores a notification record inside the transaction and
// queues it for post-commit publishing.
type emitFn func(n models.Notification)

// run executes one workflow operation as a single store transaction. The
// transaction function may be retried by optimistic backends, so emitted
// notifications are collected per attempt and published only after commit.
func (e *Engine) run(ctx context.Context, op string, fn func(tx store.Tx, emit emitFn) error) error {
	var emitted []models.Notification
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		emitted = emitted[:0]
		emit := func(n models.Notification) {
			n.ID = e.newID()
			n.Read = false
			n.Timestamp = e.clock()
			tx.PutNotification(n)
			emitted = append(emitted, n)
		}
		return fn(tx, emit)
	})

	switch {
	case err == nil:
		metrics.Operations.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, store.ErrTxConflict):
		metrics.Operations.WithLabelValues(op, "conflict").Inc()
	default:
		metrics.Operations.WithLabelValues(op, "error").Inc()
	}
	if err != nil {
		return err
	}

	if e.notifier != nil {
		for _, n := range emitted {
			if perr := e.notifier.Publish(ctx, n); perr != nil {
				// delivery is best effort, the record itself is committed
				log.Printf("notify: publish %s: %v", n.ID, perr)
			}
		}
	}
	return nil
}

// View exposes read-only access to a consistent snapshot.
func (e *Engine) View(ctx context.Context, fn func(store.View) error) error {
	return e.store.View(ctx, fn)
}

// Now returns the engine's current time; queries evaluating overdue state
// use it so tests can pin the clock.
func (e *Engine) Now() time.Time { return e.clock() }
