package memory

import (
	"time"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/google/uuid"
)

// Every value crossing the store boundary is copied so callers never share
// memory with stored state. Loaded aggregates carry no pending events.

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func uuidPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneLot(l livestock.Lot) livestock.Lot {
	l.ClearEvents()
	if l.Sale != nil {
		sale := *l.Sale
		l.Sale = &sale
	}
	return l
}

func clonePen(p livestock.Pen) livestock.Pen {
	p.ClearEvents()
	return p
}

func cloneLink(l livestock.PenLotLink) livestock.PenLotLink {
	l.RemovedAt = timePtr(l.RemovedAt)
	return l
}

func cloneIndirect(a costing.IndirectCostAllocation) costing.IndirectCostAllocation {
	a.ClearEvents()
	a.Lines = append([]costing.IndirectAllocationLine(nil), a.Lines...)
	a.ApprovedAt = timePtr(a.ApprovedAt)
	a.AppliedAt = timePtr(a.AppliedAt)
	a.DiscardedAt = timePtr(a.DiscardedAt)
	return a
}

func cloneAccount(a finance.FinancialAccount) finance.FinancialAccount {
	a.LotID = uuidPtr(a.LotID)
	a.PaymentDate = timePtr(a.PaymentDate)
	return a
}

func cloneReconciliation(r finance.ReconciliationRecord) finance.ReconciliationRecord {
	r.SupersededAt = timePtr(r.SupersededAt)
	return r
}

func cloneIncomeStatement(s report.IncomeStatement) report.IncomeStatement {
	s.LotIDs = append([]uuid.UUID(nil), s.LotIDs...)
	return s
}
