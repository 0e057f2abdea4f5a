package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
	_ "github.com/odyssey-erp/odyssey-reports/testing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func acct(id int64, code string, typ accounting.AccountType, dir accounting.Direction) accounting.Account {
	return accounting.Account{ID: id, Code: code, Name: code, Type: typ, Direction: dir}
}

func summary(a accounting.Account, debit, credit string) ledger.Summary {
	return ledger.Summary{Account: a, Debit: d(debit), Credit: d(credit)}
}

func TestBuildTrialBalance(t *testing.T) {
	chart := accounting.NewChart([]accounting.Account{
		acct(1, "1000", accounting.AccountTypeAsset, accounting.Debit),
		acct(2, "1001", accounting.AccountTypeAsset, accounting.Debit),
		acct(3, "2000", accounting.AccountTypeLiability, accounting.Credit),
		acct(4, "3000", accounting.AccountTypeEquity, accounting.Credit),
	})
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	opening := []ledger.Line{
		{EntryID: 1, AccountID: 1, Date: day, Side: accounting.Debit, Amount: d("1500")},
		{EntryID: 1, AccountID: 4, Date: day, Side: accounting.Credit, Amount: d("1500")},
	}
	period := []ledger.Line{
		{EntryID: 2, AccountID: 2, Date: day, Side: accounting.Debit, Amount: d("300")},
		{EntryID: 2, AccountID: 3, Date: day, Side: accounting.Credit, Amount: d("300")},
	}
	lines := ledger.AggregateTrialBalance(chart, period, append(opening, period...), ledger.Options{})

	tb := BuildTrialBalance(lines)
	require.Len(t, tb.Groups, 3)
	assert.Equal(t, accounting.AccountTypeAsset, tb.Groups[0].Type)
	assert.Len(t, tb.Groups[0].Accounts, 2)
	assert.Equal(t, 4, tb.RowCount())
	assert.True(t, d("300").Equal(tb.PeriodDebit))
	assert.True(t, d("300").Equal(tb.PeriodCredit))
	assert.True(t, d("1800").Equal(tb.DebitBalance))
	assert.True(t, d("1800").Equal(tb.CreditBalance))
	assert.True(t, tb.Balanced())
}

func TestTrialBalanceFlagsImbalanceWithoutFailing(t *testing.T) {
	chart := accounting.NewChart([]accounting.Account{acct(1, "1000", accounting.AccountTypeAsset, accounting.Debit)})
	lines := []ledger.Line{{AccountID: 1, Side: accounting.Debit, Amount: d("10")}}
	tb := BuildTrialBalance(ledger.AggregateTrialBalance(chart, lines, lines, ledger.Options{}))
	assert.False(t, tb.PeriodBalanced())
	assert.False(t, tb.Balanced())
}

func TestBuildIncomeStatement(t *testing.T) {
	summaries := []ledger.Summary{
		summary(acct(1, "4000", accounting.AccountTypeRevenue, accounting.Credit), "0", "1200"),
		summary(acct(2, "5000", accounting.AccountTypeCost, accounting.Debit), "300", "0"),
		summary(acct(3, "6100", accounting.AccountTypeExpense, accounting.Debit), "200", "0"),
		summary(acct(4, "7100", accounting.AccountTypeNonOperating, accounting.Credit), "0", "50"),
		summary(acct(5, "7200", accounting.AccountTypeNonOperating, accounting.Debit), "20", "0"),
	}

	is := BuildIncomeStatement(summaries, accounting.NewLookups())
	assert.True(t, d("1200").Equal(is.Revenue.Total))
	assert.True(t, d("300").Equal(is.Cost.Total))
	assert.True(t, d("200").Equal(is.Expense.Total))
	assert.True(t, d("900").Equal(is.GrossProfit))
	assert.True(t, d("30").Equal(is.NetNonOperating))
	assert.True(t, is.NonOperating.Total.Equal(is.NetNonOperating))
	require.Len(t, is.NonOperating.Accounts, 2)
	assert.True(t, d("50").Equal(is.NonOperating.Accounts[0].Amount))
	assert.True(t, d("-20").Equal(is.NonOperating.Accounts[1].Amount))
	assert.True(t, d("730").Equal(is.PreTaxIncome))

	identity := is.Revenue.Total.Sub(is.Cost.Total).Sub(is.Expense.Total).Add(is.NetNonOperating)
	assert.True(t, identity.Equal(is.PreTaxIncome))
	assert.Equal(t, "Cost of Sales", is.Cost.Label)
}

func TestBuildBalanceSheetScenario(t *testing.T) {
	summaries := []ledger.Summary{
		summary(acct(1, "1000", accounting.AccountTypeAsset, accounting.Debit), "1000", "0"),
		summary(acct(2, "3000", accounting.AccountTypeEquity, accounting.Credit), "0", "1000"),
	}
	bs := BuildBalanceSheet(summaries, accounting.NewLookups())
	assert.Equal(t, "1000.00", bs.Assets.Total.StringFixed(2))
	assert.Equal(t, "0.00", bs.Liabilities.Total.StringFixed(2))
	assert.Equal(t, "1000.00", bs.Equity.Total.StringFixed(2))
	assert.True(t, bs.Balanced())
}

func TestBuildBalanceSheetCurrentEarningsAndContra(t *testing.T) {
	summaries := []ledger.Summary{
		summary(acct(1, "1000", accounting.AccountTypeAsset, accounting.Debit), "1500", "0"),
		summary(acct(2, "1900", accounting.AccountTypeAsset, accounting.Credit), "0", "100"),
		summary(acct(3, "2000", accounting.AccountTypeLiability, accounting.Credit), "0", "400"),
		summary(acct(4, "3000", accounting.AccountTypeEquity, accounting.Credit), "0", "500"),
		summary(acct(5, "4000", accounting.AccountTypeRevenue, accounting.Credit), "0", "700"),
		summary(acct(6, "6000", accounting.AccountTypeExpense, accounting.Debit), "200", "0"),
	}
	bs := BuildBalanceSheet(summaries, accounting.NewLookups())
	assert.True(t, d("1400").Equal(bs.Assets.Total))
	assert.True(t, d("500").Equal(bs.CurrentEarnings))
	require.Len(t, bs.Equity.Accounts, 2)
	assert.Equal(t, CurrentEarningsLabel, bs.Equity.Accounts[1].Name)
	assert.True(t, d("1400").Equal(bs.TotalLiabilitiesAndEquity))
	assert.True(t, bs.Balanced())
}

func TestBalanceSheetTolerance(t *testing.T) {
	summaries := []ledger.Summary{
		summary(acct(1, "1000", accounting.AccountTypeAsset, accounting.Debit), "100.01", "0"),
		summary(acct(2, "3000", accounting.AccountTypeEquity, accounting.Credit), "0", "100"),
	}
	assert.True(t, BuildBalanceSheet(summaries, accounting.NewLookups()).Balanced())
	summaries[0].Debit = d("100.02")
	assert.False(t, BuildBalanceSheet(summaries, accounting.NewLookups()).Balanced())
}

func TestCriteriaResolve(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	r, err := Criteria{}.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), r.End)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), r.Start)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err = Criteria{StartDate: &start}.Resolve(now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Criteria{AccountTypes: []accounting.AccountType{"NOPE"}}.Resolve(now)
	assert.ErrorIs(t, err, accounting.ErrUnknownAccountType)

	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	r, err = Criteria{StartDate: &start, EndDate: &end, IncludeZero: true}.Resolve(now)
	require.NoError(t, err)
	assert.True(t, r.Options().IncludeZero)
	assert.Equal(t, "01 Jul 2024 - 31 Dec 2024", r.Label())

	pastEnd := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	r, err = Criteria{EndDate: &pastEnd}.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, pastEnd, r.End)
	assert.Equal(t, time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), r.Start)
}
