package services

import (
	"context"
	"fmt"
	"log/slog"

	"kassa/internal/amqp"
	"kassa/internal/core"
	"kassa/internal/storage"
)

// ExpenseService orchestrates expense writes: validate, persist, then
// publish an event for downstream consumers. The event client is optional;
// publish failures are logged and never fail the request, the store write
// has already succeeded.
type ExpenseService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, events *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage: storage,
		events:  events,
	}
}

// CreateExpense validates and persists a new record, then publishes an
// expense.created event.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseCreated, created.ID, created.Workplace))
	return created, nil
}

// UpdateExpense validates and replaces an existing record, then publishes an
// expense.updated event.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.storage.GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseUpdated, updated.ID, updated.Workplace))
	return updated, nil
}

// DeleteExpense removes a record permanently, then publishes an
// expense.deleted event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	expense, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseDeleted, id, expense.Workplace))
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.ExpenseEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"event", event.Event, "id", event.ID, "error", err)
	}
}

// Close closes both the storage and the event client.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
