// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"propjournal/internal/models"
)

// DataStore defines the interface for journal persistence.
type DataStore interface {
	// Accounts
	SaveAccount(ctx context.Context, acct *models.ChallengeAccount) error
	GetAccount(ctx context.Context, id string) (*models.ChallengeAccount, error)
	ListAccounts(ctx context.Context) ([]models.ChallengeAccount, error)
	UpdateAccountStatus(ctx context.Context, id string, status models.AccountStatus, stage models.AccountStage) error
	DeleteAccount(ctx context.Context, id string) error

	// Trades
	SaveTrades(ctx context.Context, trades []models.RawTrade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.RawTrade, error)
	LinkTrades(ctx context.Context, accountID string, tradeIDs []string) error
	UnlinkTrades(ctx context.Context, tradeIDs []string) error
	DeleteTrade(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying raw trades.
type TradeFilter struct {
	AccountID string
	// Unlinked selects only trades with no account link. Ignored when
	// AccountID is set.
	Unlinked  bool
	Symbol    string
	Side      models.TradeSide
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
