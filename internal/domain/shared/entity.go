package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity holds the identity and timestamps shared by every entity
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBaseEntity assigns a random id and stamps both timestamps with now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
