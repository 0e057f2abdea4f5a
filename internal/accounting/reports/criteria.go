package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
)

// ErrInvalidRange indicates a start date after the end date.
var ErrInvalidRange = errors.New("reports: start date after end date")

// Criteria filters financial statements. Nil dates fall back to defaults when
// resolved.
type Criteria struct {
	CompanyID    int64
	StartDate    *time.Time
	EndDate      *time.Time
	AccountTypes []accounting.AccountType
	IncludeZero  bool
}

// Range is an inclusive, day-granular date window.
type Range struct {
	CompanyID    int64
	Start        time.Time
	End          time.Time
	AccountTypes []accounting.AccountType
	IncludeZero  bool
}

// Resolve applies the date defaults: a missing end date is today and a missing
// start date is one year before the resolved end.
func (c Criteria) Resolve(now time.Time) (Range, error) {
	r := Range{
		CompanyID:    c.CompanyID,
		End:          truncateDay(now),
		AccountTypes: c.AccountTypes,
		IncludeZero:  c.IncludeZero,
	}
	if c.EndDate != nil {
		r.End = truncateDay(*c.EndDate)
	}
	r.Start = r.End.AddDate(-1, 0, 0)
	if c.StartDate != nil {
		r.Start = truncateDay(*c.StartDate)
	}
	if r.Start.After(r.End) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	for _, t := range c.AccountTypes {
		if !t.Valid() {
			return Range{}, fmt.Errorf("%w: %q", accounting.ErrUnknownAccountType, string(t))
		}
	}
	return r, nil
}

// Options converts the range into aggregation options.
func (r Range) Options() ledger.Options {
	return ledger.Options{IncludeZero: r.IncludeZero, Types: r.AccountTypes}
}

// Label renders the range for report subtitles.
func (r Range) Label() string {
	return r.Start.Format("02 Jan 2006") + " - " + r.End.Format("02 Jan 2006")
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
