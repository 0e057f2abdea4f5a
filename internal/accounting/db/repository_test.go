package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
)

func TestSplitJournalLine(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	lines, err := splitJournalLine(7, 3, day, "125.50", "0.00")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, accounting.Debit, lines[0].Side)
	assert.Equal(t, "125.5", lines[0].Amount.String())

	lines, err = splitJournalLine(7, 3, day, "0", "0")
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = splitJournalLine(7, 3, day, "abc", "0")
	assert.Error(t, err)
}

func TestAccountFromRow(t *testing.T) {
	a, err := accountFromRow(accounting.Account{Code: "2100"}, "liability", "")
	require.NoError(t, err)
	assert.Equal(t, accounting.AccountTypeLiability, a.Type)
	assert.Equal(t, accounting.Credit, a.Direction)

	a, err = accountFromRow(accounting.Account{Code: "1900"}, "ASSET", "CREDIT")
	require.NoError(t, err)
	assert.Equal(t, accounting.Credit, a.Direction)

	_, err = accountFromRow(accounting.Account{Code: "x"}, "weird", "")
	assert.ErrorIs(t, err, accounting.ErrUnknownAccountType)
}

func TestSnapshotRequiresPool(t *testing.T) {
	var repo *Repository
	_, err := repo.Snapshot(context.Background(), 1, time.Now(), time.Now())
	assert.Error(t, err)
}

func TestAccountsQueryKeepsInactiveAccounts(t *testing.T) {
	full := accountsQuery(map[string]bool{"normal_side": true, "sort_key": true, "is_active": true})
	assert.NotContains(t, full, "WHERE")
	assert.Contains(t, full, "COALESCE(normal_side, '')")
	assert.Contains(t, full, "COALESCE(sort_key, 0)")
	assert.Contains(t, full, "COALESCE(is_active, TRUE)")

	bare := accountsQuery(map[string]bool{})
	assert.Equal(t, "SELECT id, code, name, type, '', 0, TRUE\nFROM accounts ORDER BY code", bare)
}
