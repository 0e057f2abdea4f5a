// Package ledger folds posted journal lines into per-account summaries.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
)

// Line is a single posted journal line.
type Line struct {
	EntryID   int64
	AccountID int64
	Date      time.Time
	Side      accounting.Direction
	Amount    decimal.Decimal
}

// Summary holds debit and credit totals for one account.
type Summary struct {
	Account accounting.Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// Balance applies the account's normal direction.
func (s Summary) Balance() decimal.Decimal {
	return signedBalance(s.Account.Direction, s.Debit, s.Credit)
}

func signedBalance(dir accounting.Direction, debit, credit decimal.Decimal) decimal.Decimal {
	if dir == accounting.Credit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Options tunes aggregation output.
type Options struct {
	// IncludeZero keeps accounts whose balance is exactly zero.
	IncludeZero bool
	// Types restricts output to the given account types; empty means all.
	Types []accounting.AccountType
}

func (o Options) allows(t accounting.AccountType) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, want := range o.Types {
		if want == t {
			return true
		}
	}
	return false
}

type totals struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// fold sums lines by account id and side. Lines for accounts missing from the
// chart are ignored.
func fold(chart accounting.Chart, lines []Line) map[int64]totals {
	out := make(map[int64]totals)
	for _, ln := range lines {
		if _, ok := chart[ln.AccountID]; !ok {
			continue
		}
		t := out[ln.AccountID]
		if ln.Side == accounting.Credit {
			t.credit = t.credit.Add(ln.Amount)
		} else {
			t.debit = t.debit.Add(ln.Amount)
		}
		out[ln.AccountID] = t
	}
	return out
}

// Aggregate groups lines per account and returns the summaries sorted by
// account type, sort key, code and id. IncludeZero pads the result with
// untouched active accounts; inactive ones appear only when they carry lines.
func Aggregate(chart accounting.Chart, lines []Line, opts Options) []Summary {
	folded := fold(chart, lines)
	out := make([]Summary, 0, len(folded))
	for id, t := range folded {
		acc := chart[id]
		if !opts.allows(acc.Type) {
			continue
		}
		s := Summary{Account: acc, Debit: t.debit, Credit: t.credit}
		if !opts.IncludeZero && s.Balance().IsZero() {
			continue
		}
		out = append(out, s)
	}
	if opts.IncludeZero {
		for id, acc := range chart {
			if _, seen := folded[id]; seen || acc.Inactive || !opts.allows(acc.Type) {
				continue
			}
			out = append(out, Summary{Account: acc})
		}
	}
	sort.Slice(out, func(i, j int) bool { return accounting.Less(out[i].Account, out[j].Account) })
	return out
}

// TrialBalanceLine merges period and cumulative totals for one account.
type TrialBalanceLine struct {
	Account          accounting.Account
	PeriodDebit      decimal.Decimal
	PeriodCredit     decimal.Decimal
	CumulativeDebit  decimal.Decimal
	CumulativeCredit decimal.Decimal
}

// CumulativeBalance is the signed cumulative balance under the normal direction.
func (l TrialBalanceLine) CumulativeBalance() decimal.Decimal {
	return signedBalance(l.Account.Direction, l.CumulativeDebit, l.CumulativeCredit)
}

// BalanceColumns splits the cumulative net into debit-balance and credit-balance
// columns; exactly one of them is non-zero.
func (l TrialBalanceLine) BalanceColumns() (debit, credit decimal.Decimal) {
	net := l.CumulativeDebit.Sub(l.CumulativeCredit)
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

func (l TrialBalanceLine) hasActivity() bool {
	return !l.PeriodDebit.IsZero() || !l.PeriodCredit.IsZero()
}

// AggregateTrialBalance folds the period and cumulative line sets independently
// and merges them with a full outer join on account id. An account is dropped
// only when it has no period activity and a zero cumulative balance.
func AggregateTrialBalance(chart accounting.Chart, period, cumulative []Line, opts Options) []TrialBalanceLine {
	p := fold(chart, period)
	c := fold(chart, cumulative)

	ids := make(map[int64]struct{}, len(p)+len(c))
	for id := range p {
		ids[id] = struct{}{}
	}
	for id := range c {
		ids[id] = struct{}{}
	}
	if opts.IncludeZero {
		for id, acc := range chart {
			if !acc.Inactive {
				ids[id] = struct{}{}
			}
		}
	}

	out := make([]TrialBalanceLine, 0, len(ids))
	for id := range ids {
		acc := chart[id]
		if !opts.allows(acc.Type) {
			continue
		}
		line := TrialBalanceLine{
			Account:          acc,
			PeriodDebit:      p[id].debit,
			PeriodCredit:     p[id].credit,
			CumulativeDebit:  c[id].debit,
			CumulativeCredit: c[id].credit,
		}
		if !opts.IncludeZero && !line.hasActivity() && line.CumulativeBalance().IsZero() {
			continue
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return accounting.Less(out[i].Account, out[j].Account) })
	return out
}

// Snapshot is everything a statement needs from the books for one date range,
// read in a single consistent scope.
type Snapshot struct {
	Chart      accounting.Chart
	Period     []Line
	Cumulative []Line
}

// Empty reports whether the snapshot holds no posted lines at all.
func (s Snapshot) Empty() bool {
	return len(s.Period) == 0 && len(s.Cumulative) == 0
}
