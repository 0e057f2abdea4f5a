package reports

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Criteria filters entities for batch reports. Nil pointers and empty values
// do not filter.
type Criteria struct {
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	IDs       []int64    `json:"ids,omitempty" validate:"omitempty,max=1000,dive,gt=0"`
	Keyword   string     `json:"keyword,omitempty" validate:"max=100"`
	Active    *bool      `json:"active,omitempty"`
	Cancelled *bool      `json:"cancelled,omitempty"`
}

// Validate checks field constraints and the date order.
func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	if c.From != nil && c.To != nil && c.From.After(*c.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidCriteria, c.From.Format("2006-01-02"), c.To.Format("2006-01-02"))
	}
	return nil
}

// Summary describes the criteria for report subtitles and failure messages.
func (c Criteria) Summary() string {
	var parts []string
	if c.From != nil {
		parts = append(parts, "from "+c.From.Format("2006-01-02"))
	}
	if c.To != nil {
		parts = append(parts, "to "+c.To.Format("2006-01-02"))
	}
	if len(c.IDs) > 0 {
		ids := make([]string, len(c.IDs))
		for i, id := range c.IDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		parts = append(parts, "ids "+strings.Join(ids, ", "))
	}
	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		parts = append(parts, fmt.Sprintf("keyword %q", kw))
	}
	if c.Active != nil {
		if *c.Active {
			parts = append(parts, "active only")
		} else {
			parts = append(parts, "inactive only")
		}
	}
	if c.Cancelled != nil {
		if *c.Cancelled {
			parts = append(parts, "cancelled only")
		} else {
			parts = append(parts, "excluding cancelled")
		}
	}
	if len(parts) == 0 {
		return "all records"
	}
	return strings.Join(parts, ", ")
}

// MatchesID reports whether id passes the id filter.
func (c Criteria) MatchesID(id int64) bool {
	return len(c.IDs) == 0 || slices.Contains(c.IDs, id)
}

// MatchesKeyword is a case-insensitive substring match over fields.
func (c Criteria) MatchesKeyword(fields ...string) bool {
	kw := strings.ToLower(strings.TrimSpace(c.Keyword))
	if kw == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), kw) {
			return true
		}
	}
	return false
}

// MatchesDate checks t against the inclusive day range.
func (c Criteria) MatchesDate(t time.Time) bool {
	if c.From != nil && t.Before(startOfDay(*c.From)) {
		return false
	}
	if c.To != nil && !t.Before(startOfDay(*c.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// MatchesActive checks the active flag.
func (c Criteria) MatchesActive(active bool) bool {
	return c.Active == nil || *c.Active == active
}

// MatchesCancelled checks the cancelled flag.
func (c Criteria) MatchesCancelled(cancelled bool) bool {
	return c.Cancelled == nil || *c.Cancelled == cancelled
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
