package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
)

// CurrentEarningsLabel captions the synthetic equity line carrying unclosed profit.
const CurrentEarningsLabel = "Current Earnings"

var balanceTolerance = decimal.New(1, -2)

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	Assets                    StatementSection
	Liabilities               StatementSection
	Equity                    StatementSection
	CurrentEarnings           decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
}

// Balanced reports whether assets equal liabilities plus equity within 0.01.
func (bs BalanceSheet) Balanced() bool {
	return bs.Assets.Total.Sub(bs.TotalLiabilitiesAndEquity).Abs().LessThanOrEqual(balanceTolerance)
}

// Difference returns assets minus liabilities and equity.
func (bs BalanceSheet) Difference() decimal.Decimal {
	return bs.Assets.Total.Sub(bs.TotalLiabilitiesAndEquity)
}

// BuildBalanceSheet aggregates cumulative summaries into assets, liabilities and
// equity. Amounts are signed by the section's side so contra accounts subtract.
// Profit and loss accounts that have not been closed surface as a synthetic
// Current Earnings equity line.
func BuildBalanceSheet(summaries []ledger.Summary, lookups accounting.Lookups) BalanceSheet {
	bs := BalanceSheet{
		Assets:      StatementSection{Type: accounting.AccountTypeAsset, Label: lookups.TypeName(accounting.AccountTypeAsset)},
		Liabilities: StatementSection{Type: accounting.AccountTypeLiability, Label: lookups.TypeName(accounting.AccountTypeLiability)},
		Equity:      StatementSection{Type: accounting.AccountTypeEquity, Label: lookups.TypeName(accounting.AccountTypeEquity)},
	}
	var pl []ledger.Summary
	for _, s := range summaries {
		line := StatementLine{Code: s.Account.Code, Name: s.Account.Name}
		switch s.Account.Type {
		case accounting.AccountTypeAsset:
			line.Amount = s.Debit.Sub(s.Credit)
			bs.Assets.add(line)
		case accounting.AccountTypeLiability:
			line.Amount = s.Credit.Sub(s.Debit)
			bs.Liabilities.add(line)
		case accounting.AccountTypeEquity:
			line.Amount = s.Credit.Sub(s.Debit)
			bs.Equity.add(line)
		default:
			pl = append(pl, s)
		}
	}
	if len(pl) > 0 {
		bs.CurrentEarnings = BuildIncomeStatement(pl, lookups).PreTaxIncome
		if !bs.CurrentEarnings.IsZero() {
			bs.Equity.add(StatementLine{Name: CurrentEarningsLabel, Amount: bs.CurrentEarnings})
		}
	}
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total)
	return bs
}
