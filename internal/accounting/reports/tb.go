package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
)

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code          string
	Name          string
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
}

// TrialBalanceGroup aggregates accounts of one type for presentation.
type TrialBalanceGroup struct {
	Type          accounting.AccountType
	Accounts      []TrialBalanceAccount
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
}

// TrialBalance is the final structure rendered to documents.
type TrialBalance struct {
	Groups        []TrialBalanceGroup
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
}

// PeriodBalanced reports whether period debits equal period credits.
func (tb TrialBalance) PeriodBalanced() bool {
	return tb.PeriodDebit.Equal(tb.PeriodCredit)
}

// BalancesBalanced reports whether the cumulative balance columns agree.
func (tb TrialBalance) BalancesBalanced() bool {
	return tb.DebitBalance.Equal(tb.CreditBalance)
}

// Balanced is true when both sanity checks hold. It is informational only.
func (tb TrialBalance) Balanced() bool {
	return tb.PeriodBalanced() && tb.BalancesBalanced()
}

// RowCount returns the number of account rows.
func (tb TrialBalance) RowCount() int {
	n := 0
	for _, g := range tb.Groups {
		n += len(g.Accounts)
	}
	return n
}

// BuildTrialBalance groups merged trial balance lines by account type. Lines are
// expected in aggregator order.
func BuildTrialBalance(lines []ledger.TrialBalanceLine) TrialBalance {
	var result TrialBalance
	var current *TrialBalanceGroup
	for _, line := range lines {
		if current == nil || current.Type != line.Account.Type {
			result.Groups = append(result.Groups, TrialBalanceGroup{Type: line.Account.Type})
			current = &result.Groups[len(result.Groups)-1]
		}
		dr, cr := line.BalanceColumns()
		row := TrialBalanceAccount{
			Code:          line.Account.Code,
			Name:          line.Account.Name,
			PeriodDebit:   line.PeriodDebit,
			PeriodCredit:  line.PeriodCredit,
			DebitBalance:  dr,
			CreditBalance: cr,
		}
		current.Accounts = append(current.Accounts, row)
		current.PeriodDebit = current.PeriodDebit.Add(row.PeriodDebit)
		current.PeriodCredit = current.PeriodCredit.Add(row.PeriodCredit)
		current.DebitBalance = current.DebitBalance.Add(row.DebitBalance)
		current.CreditBalance = current.CreditBalance.Add(row.CreditBalance)
	}
	for _, grp := range result.Groups {
		result.PeriodDebit = result.PeriodDebit.Add(grp.PeriodDebit)
		result.PeriodCredit = result.PeriodCredit.Add(grp.PeriodCredit)
		result.DebitBalance = result.DebitBalance.Add(grp.DebitBalance)
		result.CreditBalance = result.CreditBalance.Add(grp.CreditBalance)
	}
	return result
}
