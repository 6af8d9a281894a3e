package costing

import (
	"fmt"
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IndirectCostType classifies a lump-sum indirect cost
type IndirectCostType string

const (
	IndirectCostAdministrative IndirectCostType = "administrative"
	IndirectCostFinancial      IndirectCostType = "financial"
	IndirectCostMarketing      IndirectCostType = "marketing"
	IndirectCostOperational    IndirectCostType = "operational"
	IndirectCostOther          IndirectCostType = "other"
)

// IsValid checks if the cost type is known
func (t IndirectCostType) IsValid() bool {
	switch t {
	case IndirectCostAdministrative, IndirectCostFinancial, IndirectCostMarketing,
		IndirectCostOperational, IndirectCostOther:
		return true
	}
	return false
}

// LedgerCategory returns the cost ledger category applied amounts post to
func (t IndirectCostType) LedgerCategory() livestock.CostCategory {
	if t == IndirectCostOperational {
		return livestock.CostCategoryOperational
	}
	return livestock.CostCategoryOther
}

// Label returns a human-readable name
func (t IndirectCostType) Label() string {
	switch t {
	case IndirectCostAdministrative:
		return "Administrative"
	case IndirectCostFinancial:
		return "Financial"
	case IndirectCostMarketing:
		return "Marketing"
	case IndirectCostOperational:
		return "Operational"
	}
	return "Other"
}

// AllocationStatus is the lifecycle state of an indirect cost allocation
type AllocationStatus string

const (
	AllocationStatusDraft     AllocationStatus = "draft"
	AllocationStatusApproved  AllocationStatus = "approved"
	AllocationStatusApplied   AllocationStatus = "applied"
	AllocationStatusDiscarded AllocationStatus = "discarded"
)

// IsValid checks if the status is known
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusDraft, AllocationStatusApproved, AllocationStatusApplied, AllocationStatusDiscarded:
		return true
	}
	return false
}

// String returns the string representation
func (s AllocationStatus) String() string {
	return string(s)
}

// IsTerminal returns true for applied and discarded allocations
func (s AllocationStatus) IsTerminal() bool {
	return s == AllocationStatusApplied || s == AllocationStatusDiscarded
}

// CanApprove returns true if the allocation can be approved
func (s AllocationStatus) CanApprove() bool {
	return s == AllocationStatusDraft
}

// CanApply returns true if the allocation can be posted to the ledger
func (s AllocationStatus) CanApply() bool {
	return s == AllocationStatusApproved
}

// CanDiscard returns true if the allocation can be rejected
func (s AllocationStatus) CanDiscard() bool {
	return s == AllocationStatusDraft
}

// IndirectAllocationLine is one lot's part of an indirect allocation
type IndirectAllocationLine struct {
	LotID           uuid.UUID       `json:"lot_id"`
	LotCode         string          `json:"lot_code"`
	Heads           int             `json:"heads"`
	Value           decimal.Decimal `json:"value"`
	Days            int             `json:"days"`
	Weight          decimal.Decimal `json:"weight"`
	Basis           decimal.Decimal `json:"basis"`
	Percentage      decimal.Decimal `json:"percentage"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// IndirectCostAllocation is a rateio of a lump-sum indirect cost across
// lots. It only touches the cost ledger once approved and applied.
type IndirectCostAllocation struct {
	shared.BaseAggregateRoot
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Period        valueobject.Period       `json:"period"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	CostType      IndirectCostType         `json:"cost_type"`
	Method        AllocationMethod         `json:"method"`
	BasisTotal    decimal.Decimal          `json:"basis_total"`
	Lines         []IndirectAllocationLine `json:"lines"`
	Status        AllocationStatus         `json:"status"`
	ApprovedBy    string                   `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time               `json:"approved_at,omitempty"`
	AppliedAt     *time.Time               `json:"applied_at,omitempty"`
	DiscardedAt   *time.Time               `json:"discarded_at,omitempty"`
	DiscardReason string                   `json:"discard_reason,omitempty"`
}

func invalidTransition(from AllocationStatus, action string) error {
	return shared.NewDomainError(shared.ErrInvalidTransition.Code,
		fmt.Sprintf("Cannot %s allocation in %s status", action, from))
}

// Approve moves a draft to approved
func (a *IndirectCostAllocation) Approve(approvedBy string, at time.Time) error {
	if !a.Status.CanApprove() {
		return invalidTransition(a.Status, "approve")
	}
	if approvedBy == "" {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}
	a.Status = AllocationStatusApproved
	a.ApprovedBy = approvedBy
	a.ApprovedAt = &at
	a.Bump()
	a.Raise(NewIndirectAllocationStatusChangedEvent(a))
	return nil
}

// ApplyTo posts every line into its lot's cost ledger and moves the
// allocation to applied. Either all lines post or none do.
func (a *IndirectCostAllocation) ApplyTo(lots []*livestock.Lot, at time.Time) error {
	if !a.Status.CanApply() {
		return invalidTransition(a.Status, "apply")
	}
	byID := make(map[uuid.UUID]*livestock.Lot, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
	}
	for _, line := range a.Lines {
		if _, ok := byID[line.LotID]; !ok {
			return shared.ErrNotFound.WithMessagef("Lot %s of allocation line not found", line.LotID)
		}
		if line.AllocatedAmount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Allocation line amount cannot be negative")
		}
	}

	category := a.CostType.LedgerCategory()
	for _, line := range a.Lines {
		if err := byID[line.LotID].PostCost(category, line.AllocatedAmount); err != nil {
			return err
		}
	}

	a.Status = AllocationStatusApplied
	a.AppliedAt = &at
	a.Bump()
	a.Raise(NewIndirectAllocationStatusChangedEvent(a))
	return nil
}

// Discard rejects a draft
func (a *IndirectCostAllocation) Discard(reason string, at time.Time) error {
	if !a.Status.CanDiscard() {
		return invalidTransition(a.Status, "discard")
	}
	a.Status = AllocationStatusDiscarded
	a.DiscardReason = reason
	a.DiscardedAt = &at
	a.Bump()
	a.Raise(NewIndirectAllocationStatusChangedEvent(a))
	return nil
}

// LineFor returns the line of a lot, if any
func (a *IndirectCostAllocation) LineFor(lotID uuid.UUID) (IndirectAllocationLine, bool) {
	for _, l := range a.Lines {
		if l.LotID == lotID {
			return l, true
		}
	}
	return IndirectAllocationLine{}, false
}

// LotIDs returns the lots this allocation distributes to
func (a *IndirectCostAllocation) LotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(a.Lines))
	for i, l := range a.Lines {
		ids[i] = l.LotID
	}
	return ids
}
