package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testChart = accounting.NewChart([]accounting.Account{
	{ID: 1, Code: "1000", Name: "Cash", Type: accounting.AccountTypeAsset, Direction: accounting.Debit},
	{ID: 2, Code: "2000", Name: "Payables", Type: accounting.AccountTypeLiability, Direction: accounting.Credit},
	{ID: 3, Code: "3000", Name: "Capital", Type: accounting.AccountTypeEquity, Direction: accounting.Credit},
	{ID: 4, Code: "4000", Name: "Sales", Type: accounting.AccountTypeRevenue, Direction: accounting.Credit},
	{ID: 5, Code: "1000", Name: "Petty", Type: accounting.AccountTypeExpense, Direction: accounting.Debit},
	{ID: 6, Code: "1500", Name: "Idle", Type: accounting.AccountTypeAsset, Direction: accounting.Debit},
})

func entry(id int64, day int, debitAcc, creditAcc int64, amount string) []Line {
	date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	return []Line{
		{EntryID: id, AccountID: debitAcc, Date: date, Side: accounting.Debit, Amount: d(amount)},
		{EntryID: id, AccountID: creditAcc, Date: date, Side: accounting.Credit, Amount: d(amount)},
	}
}

func TestAggregateSumsAndSorts(t *testing.T) {
	var lines []Line
	lines = append(lines, entry(1, 1, 1, 3, "1000")...)
	lines = append(lines, entry(2, 2, 1, 4, "250.50")...)
	lines = append(lines, entry(3, 3, 5, 1, "50")...)
	lines = append(lines, Line{AccountID: 99, Side: accounting.Debit, Amount: d("7")})

	got := Aggregate(testChart, lines, Options{})
	require.Len(t, got, 4)
	assert.Equal(t, int64(1), got[0].Account.ID)
	assert.True(t, d("1200.50").Equal(got[0].Balance()))
	assert.Equal(t, int64(3), got[1].Account.ID)
	assert.True(t, d("1000").Equal(got[1].Balance()))
	assert.Equal(t, int64(4), got[2].Account.ID)
	assert.True(t, d("250.50").Equal(got[2].Balance()))
	// same code as Cash but sorts after Revenue by type
	assert.Equal(t, int64(5), got[3].Account.ID)
}

func TestAggregateZeroAndTypeFilter(t *testing.T) {
	lines := append(entry(1, 1, 1, 2, "10"), entry(2, 2, 2, 1, "10")...)
	assert.Empty(t, Aggregate(testChart, lines, Options{}))

	all := Aggregate(testChart, lines, Options{IncludeZero: true})
	assert.Len(t, all, len(testChart))

	assets := Aggregate(testChart, lines, Options{IncludeZero: true, Types: []accounting.AccountType{accounting.AccountTypeAsset}})
	require.Len(t, assets, 2)
	assert.Equal(t, "1000", assets[0].Account.Code)
	assert.Equal(t, "1500", assets[1].Account.Code)
}

func TestAggregateEmptyLedger(t *testing.T) {
	got := Aggregate(testChart, nil, Options{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateTrialBalanceOuterJoin(t *testing.T) {
	before := entry(1, 1, 1, 3, "500")
	inPeriod := entry(2, 20, 5, 2, "80")
	cumulative := append(append([]Line{}, before...), inPeriod...)

	got := AggregateTrialBalance(testChart, inPeriod, cumulative, Options{})
	require.Len(t, got, 4)

	byID := map[int64]TrialBalanceLine{}
	for _, l := range got {
		byID[l.Account.ID] = l
	}
	cash := byID[1]
	assert.True(t, cash.PeriodDebit.IsZero())
	assert.True(t, d("500").Equal(cash.CumulativeDebit))
	capital := byID[3]
	assert.True(t, capital.PeriodCredit.IsZero())
	assert.True(t, d("500").Equal(capital.CumulativeBalance()))
	expense := byID[5]
	assert.True(t, d("80").Equal(expense.PeriodDebit))

	var pd, pc, bd, bc decimal.Decimal
	for _, l := range got {
		pd = pd.Add(l.PeriodDebit)
		pc = pc.Add(l.PeriodCredit)
		dr, cr := l.BalanceColumns()
		bd = bd.Add(dr)
		bc = bc.Add(cr)
	}
	assert.True(t, pd.Equal(pc))
	assert.True(t, bd.Equal(bc))
}

func TestAggregateTrialBalanceKeepsPeriodActivityWithZeroBalance(t *testing.T) {
	period := append(entry(1, 5, 1, 2, "40"), entry(2, 6, 2, 1, "40")...)
	got := AggregateTrialBalance(testChart, period, period, Options{})
	require.Len(t, got, 2)
	for _, l := range got {
		assert.True(t, l.CumulativeBalance().IsZero())
	}
}

func TestInactiveAccountPostingsStayInTheBooks(t *testing.T) {
	chart := accounting.NewChart([]accounting.Account{
		{ID: 1, Code: "1000", Name: "Cash", Type: accounting.AccountTypeAsset, Direction: accounting.Debit},
		{ID: 2, Code: "1100", Name: "Old Bank", Type: accounting.AccountTypeAsset, Direction: accounting.Debit, Inactive: true},
		{ID: 3, Code: "3000", Name: "Capital", Type: accounting.AccountTypeEquity, Direction: accounting.Credit},
		{ID: 4, Code: "1200", Name: "Closed Till", Type: accounting.AccountTypeAsset, Direction: accounting.Debit, Inactive: true},
	})
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	lines := []Line{
		{EntryID: 1, AccountID: 1, Date: date, Side: accounting.Debit, Amount: d("600")},
		{EntryID: 1, AccountID: 2, Date: date, Side: accounting.Debit, Amount: d("400")},
		{EntryID: 1, AccountID: 3, Date: date, Side: accounting.Credit, Amount: d("1000")},
	}

	tb := AggregateTrialBalance(chart, lines, lines, Options{})
	require.Len(t, tb, 3)
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range tb {
		debit = debit.Add(l.PeriodDebit)
		credit = credit.Add(l.PeriodCredit)
	}
	assert.True(t, debit.Equal(credit), "period debit %s credit %s", debit, credit)

	assets, equity := decimal.Zero, decimal.Zero
	for _, s := range Aggregate(chart, lines, Options{}) {
		switch s.Account.Type {
		case accounting.AccountTypeAsset:
			assets = assets.Add(s.Balance())
		case accounting.AccountTypeEquity:
			equity = equity.Add(s.Balance())
		}
	}
	assert.True(t, d("1000").Equal(assets))
	assert.True(t, assets.Equal(equity))

	padded := Aggregate(chart, lines, Options{IncludeZero: true})
	ids := make([]int64, 0, len(padded))
	for _, s := range padded {
		ids = append(ids, s.Account.ID)
	}
	assert.NotContains(t, ids, int64(4), "untouched inactive accounts are not padded in")
	assert.Len(t, AggregateTrialBalance(chart, lines, lines, Options{IncludeZero: true}), 3)
}
