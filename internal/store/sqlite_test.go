package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propjournal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAccount(id string) *models.ChallengeAccount {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.ChallengeAccount{
		ID:                     id,
		Name:                   "50K Eval",
		AccountSize:            50000,
		ProfitTarget:           3000,
		MaxDrawdown:            2000,
		DailyLossLimit:         1000,
		MinTradingDays:         5,
		IsTrailingDrawdown:     true,
		ConsistencyRulePercent: 50,
		Status:                 models.AccountActive,
		Stage:                  models.StageEvaluation,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func testTrade(id, symbol, accountID string, pnl float64, exit time.Time) models.RawTrade {
	return models.RawTrade{
		ID:         id,
		Symbol:     symbol,
		Side:       models.SideLong,
		EntryPrice: 100,
		ExitPrice:  105,
		Qty:        2,
		PnL:        pnl,
		EntryTime:  exit.Add(-time.Hour),
		ExitTime:   exit,
		ExternalID: "csv-1-" + id,
		Tags:       []string{"breakout"},
		AccountID:  accountID,
	}
}

func TestAccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := testAccount("a1")
	require.NoError(t, s.SaveAccount(ctx, acct))

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acct.Name, got.Name)
	assert.Equal(t, acct.AccountSize, got.AccountSize)
	assert.True(t, got.IsTrailingDrawdown)
	assert.Equal(t, 50, got.ConsistencyRulePercent)
	assert.Equal(t, models.AccountActive, got.Status)
}

func TestGetAccount_NotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetAccount(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAccountStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, testAccount("a1")))
	require.NoError(t, s.UpdateAccountStatus(ctx, "a1", models.AccountPassed, models.StageFunded))

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountPassed, got.Status)
	assert.Equal(t, models.StageFunded, got.Stage)

	assert.Error(t, s.UpdateAccountStatus(ctx, "missing", models.AccountFailed, models.StageEvaluation))
}

func TestSaveTrades_IdempotentOnReimport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exit := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	trades := []models.RawTrade{testTrade("t1", "NQ", "", 50, exit)}
	require.NoError(t, s.SaveTrades(ctx, trades))
	require.NoError(t, s.SaveTrades(ctx, trades))

	got, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"breakout"}, got[0].Tags)
}

func TestGetTrades_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, testAccount("a1")))
	d1 := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveTrades(ctx, []models.RawTrade{
		testTrade("t1", "NQ", "a1", 50, d1),
		testTrade("t2", "ES", "a1", -20, d2),
		testTrade("t3", "NQ", "", 30, d2),
	}))

	got, err := s.GetTrades(ctx, TradeFilter{AccountID: "a1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID, "ordered by exit time ascending")

	got, err = s.GetTrades(ctx, TradeFilter{Unlinked: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t3", got[0].ID)

	got, err = s.GetTrades(ctx, TradeFilter{Symbol: "NQ"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.GetTrades(ctx, TradeFilter{StartDate: d2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.GetTrades(ctx, TradeFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLinkUnlinkTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exit := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAccount(ctx, testAccount("a1")))
	require.NoError(t, s.SaveTrades(ctx, []models.RawTrade{
		testTrade("t1", "NQ", "", 50, exit),
		testTrade("t2", "NQ", "", 20, exit),
	}))

	require.NoError(t, s.LinkTrades(ctx, "a1", []string{"t1", "t2"}))
	got, err := s.GetTrades(ctx, TradeFilter{AccountID: "a1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.UnlinkTrades(ctx, []string{"t1"}))
	got, err = s.GetTrades(ctx, TradeFilter{AccountID: "a1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.Error(t, s.LinkTrades(ctx, "missing", []string{"t1"}), "linking to an unknown account fails")
}

func TestDeleteAccount_UnlinksTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exit := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAccount(ctx, testAccount("a1")))
	require.NoError(t, s.SaveTrades(ctx, []models.RawTrade{testTrade("t1", "NQ", "a1", 50, exit)}))

	require.NoError(t, s.DeleteAccount(ctx, "a1"))

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)

	trades, err := s.GetTrades(ctx, TradeFilter{Unlinked: true})
	require.NoError(t, err)
	assert.Len(t, trades, 1, "trades survive account deletion, unlinked")
}

func TestDeleteTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exit := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveTrades(ctx, []models.RawTrade{testTrade("t1", "NQ", "", 50, exit)}))
	require.NoError(t, s.DeleteTrade(ctx, "t1"))
	assert.Error(t, s.DeleteTrade(ctx, "t1"))
}
