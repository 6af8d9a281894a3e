package report

import (
	"context"

	"github.com/google/uuid"
)

// IncomeStatementRepository persists generated statements
type IncomeStatementRepository interface {
	// FindByID returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*IncomeStatement, error)
	// Create stores a statement once; a second create of the same id
	// returns shared.ErrAlreadyExists
	Create(ctx context.Context, stmt *IncomeStatement) error
}
