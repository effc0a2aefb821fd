// Package events publishes ledger change events for downstream consumers
// (push notification pipeline, reconciliation tooling). Publishing is
// best-effort: failures are logged by callers and never fail the ledger
// operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types emitted by the engine.
const (
	TypeContributionAdded   = "contribution.added"
	TypeContributionUpdated = "contribution.updated"
	TypeContributionDeleted = "contribution.deleted"
	TypeSettlementExecuted  = "settlement.executed"
	TypePendingCreated      = "pending_transaction.created"
	TypeMemberLeft          = "member.left"
)

// Event is one ledger change notification.
type Event struct {
	Type       string    `json:"type"`
	PlanID     string    `json:"plan_id"`
	RecordID   string    `json:"record_id,omitempty"`
	PersonID   string    `json:"person_id,omitempty"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for the wire.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON deserializes an event from the wire.
func EventFromJSON(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher emits ledger events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
