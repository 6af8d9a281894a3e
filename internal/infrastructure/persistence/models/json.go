package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/report"
)

// IndirectLines stores the per-lot lines of an indirect allocation as JSONB
type IndirectLines []costing.IndirectAllocationLine

// Value implements driver.Valuer interface for GORM to write to JSONB
func (l IndirectLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *IndirectLines) Scan(value any) error {
	if value == nil {
		*l = IndirectLines{}
		return nil
	}
	data, err := jsonBytes(value)
	if err != nil {
		return errors.New("failed to scan IndirectLines: unsupported type")
	}
	return json.Unmarshal(data, l)
}

// StatementPayload stores a generated income statement as JSONB
type StatementPayload report.IncomeStatement

// Value implements driver.Valuer interface for GORM to write to JSONB
func (p StatementPayload) Value() (driver.Value, error) {
	return json.Marshal(report.IncomeStatement(p))
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *StatementPayload) Scan(value any) error {
	if value == nil {
		return errors.New("failed to scan StatementPayload: null value")
	}
	data, err := jsonBytes(value)
	if err != nil {
		return errors.New("failed to scan StatementPayload: unsupported type")
	}
	var stmt report.IncomeStatement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return err
	}
	*p = StatementPayload(stmt)
	return nil
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.New("unsupported type")
}
