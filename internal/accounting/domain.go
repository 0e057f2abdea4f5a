package accounting

import (
	"errors"
	"fmt"
	"strings"
)

// AccountType enumerates CoA categories in financial statement order.
type AccountType string

const (
	AccountTypeAsset        AccountType = "ASSET"
	AccountTypeLiability    AccountType = "LIABILITY"
	AccountTypeEquity       AccountType = "EQUITY"
	AccountTypeRevenue      AccountType = "REVENUE"
	AccountTypeCost         AccountType = "COST"
	AccountTypeExpense      AccountType = "EXPENSE"
	AccountTypeNonOperating AccountType = "NON_OPERATING"
)

// AccountTypes lists every type in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeCost,
	AccountTypeExpense,
	AccountTypeNonOperating,
}

// Order returns the statement rank of the type; unknown types sort last.
func (t AccountType) Order() int {
	for i, at := range AccountTypes {
		if at == t {
			return i
		}
	}
	return len(AccountTypes)
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t.Order() < len(AccountTypes)
}

// ErrUnknownAccountType indicates an account type string that cannot be parsed.
var ErrUnknownAccountType = errors.New("accounting: unknown account type")

// ParseAccountType accepts the canonical names plus a few legacy aliases.
func ParseAccountType(s string) (AccountType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "ASSET", "ASSETS":
		return AccountTypeAsset, nil
	case "LIABILITY", "LIABILITIES":
		return AccountTypeLiability, nil
	case "EQUITY":
		return AccountTypeEquity, nil
	case "REVENUE", "INCOME":
		return AccountTypeRevenue, nil
	case "COST", "COGS", "COST_OF_SALES":
		return AccountTypeCost, nil
	case "EXPENSE", "EXPENSES":
		return AccountTypeExpense, nil
	case "NON_OPERATING", "NONOPERATING", "OTHER":
		return AccountTypeNonOperating, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
}

// Direction is the side on which an account's balance is conventionally positive.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// ParseDirection parses a normal direction; anything but credit is debit.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CR", "CREDIT":
		return Credit
	default:
		return Debit
	}
}

// DefaultDirection returns the conventional normal direction for a type.
func DefaultDirection(t AccountType) Direction {
	switch t {
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return Credit
	default:
		return Debit
	}
}

// Account models a chart of accounts node. Direction is fixed when the account
// is created.
type Account struct {
	ID        int64
	Code      string
	Name      string
	Type      AccountType
	Direction Direction
	SortKey   int
	// Inactive accounts accept no new postings but keep their history.
	Inactive bool
}

// Chart indexes accounts by id.
type Chart map[int64]Account

// NewChart builds a Chart from a slice; later duplicates win.
func NewChart(accounts []Account) Chart {
	chart := make(Chart, len(accounts))
	for _, acc := range accounts {
		chart[acc.ID] = acc
	}
	return chart
}

// Less orders accounts by type, sort key, code, then id.
func Less(a, b Account) bool {
	if a.Type.Order() != b.Type.Order() {
		return a.Type.Order() < b.Type.Order()
	}
	if a.SortKey != b.SortKey {
		return a.SortKey < b.SortKey
	}
	if a.Code != b.Code {
		return a.Code < b.Code
	}
	return a.ID < b.ID
}

// Lookups carries display names for account types. Built once at startup and
// passed to whoever renders statements.
type Lookups struct {
	typeNames map[AccountType]string
}

// NewLookups returns the default English account type names.
func NewLookups() Lookups {
	return Lookups{typeNames: map[AccountType]string{
		AccountTypeAsset:        "Assets",
		AccountTypeLiability:    "Liabilities",
		AccountTypeEquity:       "Equity",
		AccountTypeRevenue:      "Revenue",
		AccountTypeCost:         "Cost of Sales",
		AccountTypeExpense:      "Operating Expenses",
		AccountTypeNonOperating: "Non-Operating Income and Expenses",
	}}
}

// TypeName returns the display name for t or the raw value when unknown.
func (l Lookups) TypeName(t AccountType) string {
	if name, ok := l.typeNames[t]; ok {
		return name
	}
	return string(t)
}
