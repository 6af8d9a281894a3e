package shared

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate types named on events. Cost and link events belong to the pen
// they were posted through.
const (
	AggregatePen                    = "Pen"
	AggregateLot                    = "Lot"
	AggregateIndirectCostAllocation = "IndirectCostAllocation"
	AggregateBankStatementEntry     = "BankStatementEntry"
)

// DomainEvent is a fact raised by an aggregate
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent implements DomainEvent for embedding in concrete events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a new event raised by the given aggregate
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
