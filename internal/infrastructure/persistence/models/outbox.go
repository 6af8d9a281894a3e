package models

import (
	"encoding/json"
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DomainEventModel is the persistence model for a published domain event.
// The table is append-only and serves as the engine's audit trail.
type DomainEventModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType     string    `gorm:"type:varchar(100);not null;index"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index:idx_domain_events_aggregate,priority:2"`
	AggregateType string    `gorm:"type:varchar(100);not null;index:idx_domain_events_aggregate,priority:1"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	OccurredAt    time.Time `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DomainEventModel) TableName() string {
	return "domain_events"
}

// DomainEventModelFromDomain serializes a domain event into its log row
func DomainEventModelFromDomain(e shared.DomainEvent) (*DomainEventModel, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &DomainEventModel{
		ID:            e.EventID(),
		EventType:     e.EventType(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		Payload:       payload,
		OccurredAt:    e.OccurredAt(),
		CreatedAt:     time.Now(),
	}, nil
}
