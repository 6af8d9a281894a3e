package persistence

import (
	"context"
	"fmt"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventLog appends every published domain event to the domain_events table
type GormEventLog struct {
	db *gorm.DB
}

// NewGormEventLog creates a new GormEventLog
func NewGormEventLog(db *gorm.DB) *GormEventLog {
	return &GormEventLog{db: db}
}

// Handle stores the event. Redelivery of the same event id is ignored.
func (l *GormEventLog) Handle(ctx context.Context, event shared.DomainEvent) error {
	row, err := models.DomainEventModelFromDomain(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// EventTypes returns nil: the log receives all events
func (l *GormEventLog) EventTypes() []string {
	return nil
}

// CountByAggregate returns how many events an aggregate has produced
func (l *GormEventLog) CountByAggregate(ctx context.Context, aggregateType string) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.DomainEventModel{}).
		Where("aggregate_type = ?", aggregateType).
		Count(&count).Error
	return count, err
}

var _ shared.EventHandler = (*GormEventLog)(nil)
