package memory

import (
	"context"

	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type incomeStatementRepository struct {
	acc accessor
}

func (r *incomeStatementRepository) FindByID(_ context.Context, id uuid.UUID) (*report.IncomeStatement, error) {
	var stmt report.IncomeStatement
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.incomes[id]
		if !ok {
			return shared.ErrNotFound
		}
		stmt = cloneIncomeStatement(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

func (r *incomeStatementRepository) Create(_ context.Context, stmt *report.IncomeStatement) error {
	return r.acc.view(func(d *dataset) error {
		if _, ok := d.incomes[stmt.ID]; ok {
			return shared.ErrAlreadyExists
		}
		d.incomes[stmt.ID] = cloneIncomeStatement(*stmt)
		return nil
	})
}

var _ report.IncomeStatementRepository = (*incomeStatementRepository)(nil)
