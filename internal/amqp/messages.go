package amqp

import (
	"encoding/json"
	"time"
)

// Event names carried in the routing payload.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseUpdated = "expense.updated"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is the lightweight message published after a successful store
// write. Consumers fetch the full record by id if they need it.
type ExpenseEvent struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	Workplace string    `json:"workplace"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(event string, id int64, workplace string) *ExpenseEvent {
	return &ExpenseEvent{
		Event:     event,
		ID:        id,
		Workplace: workplace,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
