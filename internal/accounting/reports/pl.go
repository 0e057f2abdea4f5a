package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
)

// StatementLine is an account row on a financial statement.
type StatementLine struct {
	Code   string
	Name   string
	Amount decimal.Decimal
}

// StatementSection groups lines under a caption with a signed total.
type StatementSection struct {
	Type     accounting.AccountType
	Label    string
	Accounts []StatementLine
	Total    decimal.Decimal
}

func (s *StatementSection) add(line StatementLine) {
	s.Accounts = append(s.Accounts, line)
	s.Total = s.Total.Add(line.Amount)
}

// IncomeStatement contains the structured output for the report.
type IncomeStatement struct {
	Revenue         StatementSection
	Cost            StatementSection
	Expense         StatementSection
	NonOperating    StatementSection
	GrossProfit     decimal.Decimal
	OperatingIncome decimal.Decimal
	NetNonOperating decimal.Decimal
	PreTaxIncome    decimal.Decimal
}

// Empty reports whether no account contributed to the statement.
func (is IncomeStatement) Empty() bool {
	return len(is.Revenue.Accounts)+len(is.Cost.Accounts)+len(is.Expense.Accounts)+len(is.NonOperating.Accounts) == 0
}

// BuildIncomeStatement splits summaries into statement sections. Revenue is
// read as credit-normal and Cost and Expense as debit-normal regardless of the
// account's own direction. Non-operating lines are signed income-positive, so
// non-operating expenses show as negative amounts and the section total is
// the net non-operating result.
func BuildIncomeStatement(summaries []ledger.Summary, lookups accounting.Lookups) IncomeStatement {
	is := IncomeStatement{
		Revenue:      StatementSection{Type: accounting.AccountTypeRevenue, Label: lookups.TypeName(accounting.AccountTypeRevenue)},
		Cost:         StatementSection{Type: accounting.AccountTypeCost, Label: lookups.TypeName(accounting.AccountTypeCost)},
		Expense:      StatementSection{Type: accounting.AccountTypeExpense, Label: lookups.TypeName(accounting.AccountTypeExpense)},
		NonOperating: StatementSection{Type: accounting.AccountTypeNonOperating, Label: lookups.TypeName(accounting.AccountTypeNonOperating)},
	}
	for _, s := range summaries {
		line := StatementLine{Code: s.Account.Code, Name: s.Account.Name}
		switch s.Account.Type {
		case accounting.AccountTypeRevenue:
			line.Amount = s.Credit.Sub(s.Debit)
			is.Revenue.add(line)
		case accounting.AccountTypeCost:
			line.Amount = s.Debit.Sub(s.Credit)
			is.Cost.add(line)
		case accounting.AccountTypeExpense:
			line.Amount = s.Debit.Sub(s.Credit)
			is.Expense.add(line)
		case accounting.AccountTypeNonOperating:
			line.Amount = s.Credit.Sub(s.Debit)
			is.NonOperating.add(line)
		}
	}
	is.NetNonOperating = is.NonOperating.Total
	is.GrossProfit = is.Revenue.Total.Sub(is.Cost.Total)
	is.OperatingIncome = is.GrossProfit.Sub(is.Expense.Total)
	is.PreTaxIncome = is.OperatingIncome.Add(is.NetNonOperating)
	return is
}
