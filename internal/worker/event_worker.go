// Package worker processes expense events from the queue. Today that means
// resolving each event against the store and writing an audit log line, which
// keeps the queue drained and surfaces publishers that emit stale IDs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"kassa/internal/amqp"
	"kassa/internal/core"
	applog "kassa/internal/log"
	"kassa/internal/storage"
)

// EventWorker consumes expense events and audits them against the store.
type EventWorker struct {
	store  *storage.SQLiteRepository
	logger *applog.Logger

	processed atomic.Int64
	skipped   atomic.Int64
}

// Stats is a point-in-time snapshot of the worker's counters.
type Stats struct {
	Processed int64
	Skipped   int64
}

func New(store *storage.SQLiteRepository, logger *applog.Logger) *EventWorker {
	return &EventWorker{
		store:  store,
		logger: logger.WithComponent("worker"),
	}
}

// HandleEvent processes a single expense event. A non-nil return asks the
// consumer to requeue the delivery, so only store failures propagate; events
// that can never succeed (stale IDs, unknown event names) are logged and
// acknowledged.
func (w *EventWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	switch event.Event {
	case amqp.EventExpenseCreated, amqp.EventExpenseUpdated:
		expense, err := w.store.GetExpense(ctx, event.ID)
		if errors.Is(err, core.ErrNotFound) {
			// The record vanished before we saw the event, usually a
			// delete racing the queue. Requeueing would spin forever.
			w.skipped.Add(1)
			w.logger.WarnContext(ctx, "Expense event references missing record",
				"event", event.Event, "id", event.ID, "workplace", event.Workplace)
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve expense %d: %w", event.ID, err)
		}

		w.processed.Add(1)
		w.logger.InfoContext(ctx, "Expense event processed",
			"event", event.Event, "id", expense.ID,
			"workplace", expense.Workplace, "amount", expense.Amount.String())
		return nil

	case amqp.EventExpenseDeleted:
		w.processed.Add(1)
		w.logger.InfoContext(ctx, "Expense event processed",
			"event", event.Event, "id", event.ID, "workplace", event.Workplace)
		return nil

	default:
		w.skipped.Add(1)
		w.logger.WarnContext(ctx, "Skipping unknown expense event",
			"event", event.Event, "id", event.ID)
		return nil
	}
}

// Stats reports how many events the worker has processed and skipped.
func (w *EventWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Skipped:   w.skipped.Load(),
	}
}
