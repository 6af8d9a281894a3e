package memory

import (
	"context"
	"sort"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

type statementRepository struct {
	acc accessor
}

func (r *statementRepository) FindByID(_ context.Context, id uuid.UUID) (*finance.BankStatementEntry, error) {
	var entry finance.BankStatementEntry
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.statements[id]
		if !ok {
			return shared.ErrNotFound
		}
		entry = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *statementRepository) FindUnreconciled(_ context.Context, bankAccountRef string) ([]finance.BankStatementEntry, error) {
	var entries []finance.BankStatementEntry
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.statements {
			if stored.Reconciled {
				continue
			}
			if bankAccountRef != "" && stored.BankAccountRef != bankAccountRef {
				continue
			}
			entries = append(entries, stored)
		}
		return nil
	})
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries, err
}

func (r *statementRepository) Save(_ context.Context, entry *finance.BankStatementEntry) error {
	return r.acc.view(func(d *dataset) error {
		d.statements[entry.ID] = *entry
		return nil
	})
}

type accountRepository struct {
	acc accessor
}

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*finance.FinancialAccount, error) {
	var account finance.FinancialAccount
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.accounts[id]
		if !ok {
			return shared.ErrNotFound
		}
		account = cloneAccount(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindOpen(_ context.Context, direction finance.AccountDirection) ([]finance.FinancialAccount, error) {
	var accounts []finance.FinancialAccount
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.accounts {
			if stored.Direction == direction && stored.IsOpen() {
				accounts = append(accounts, cloneAccount(stored))
			}
		}
		return nil
	})
	sortAccounts(accounts)
	return accounts, err
}

func (r *accountRepository) FindPaidInPeriod(_ context.Context, category finance.AccountCategory, period valueobject.Period) ([]finance.FinancialAccount, error) {
	var accounts []finance.FinancialAccount
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.accounts {
			if stored.Category != category || stored.Status != finance.AccountStatusPaid || stored.PaymentDate == nil {
				continue
			}
			if period.Contains(*stored.PaymentDate) {
				accounts = append(accounts, cloneAccount(stored))
			}
		}
		return nil
	})
	sortAccounts(accounts)
	return accounts, err
}

// Save rejects a stale write: an update must carry the stored version + 1
func (r *accountRepository) Save(_ context.Context, account *finance.FinancialAccount) error {
	return r.acc.view(func(d *dataset) error {
		if stored, ok := d.accounts[account.ID]; ok && account.Version != stored.Version+1 {
			return shared.ErrConcurrencyConflict
		}
		d.accounts[account.ID] = cloneAccount(*account)
		return nil
	})
}

func sortAccounts(accounts []finance.FinancialAccount) {
	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].DueDate.Equal(accounts[j].DueDate) {
			return accounts[i].DueDate.Before(accounts[j].DueDate)
		}
		return accounts[i].ID.String() < accounts[j].ID.String()
	})
}

type reconciliationRepository struct {
	acc accessor
}

func (r *reconciliationRepository) FindByID(_ context.Context, id uuid.UUID) (*finance.ReconciliationRecord, error) {
	var record finance.ReconciliationRecord
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.reconciliations[id]
		if !ok {
			return shared.ErrNotFound
		}
		record = cloneReconciliation(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *reconciliationRepository) FindLiveByStatement(_ context.Context, statementID uuid.UUID) (*finance.ReconciliationRecord, error) {
	var record finance.ReconciliationRecord
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.reconciliations {
			if stored.StatementID == statementID && !stored.Superseded {
				record = cloneReconciliation(stored)
				return nil
			}
		}
		return shared.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *reconciliationRepository) Save(_ context.Context, record *finance.ReconciliationRecord) error {
	return r.acc.view(func(d *dataset) error {
		d.reconciliations[record.ID] = cloneReconciliation(*record)
		return nil
	})
}

var (
	_ finance.StatementRepository            = (*statementRepository)(nil)
	_ finance.FinancialAccountRepository     = (*accountRepository)(nil)
	_ finance.ReconciliationRecordRepository = (*reconciliationRepository)(nil)
)
