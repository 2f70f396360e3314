// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"propjournal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Challenge accounts with their rule sets
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		account_size REAL NOT NULL,
		profit_target REAL DEFAULT 0,
		max_drawdown REAL DEFAULT 0,
		daily_loss_limit REAL DEFAULT 0,
		min_trading_days INTEGER DEFAULT 0,
		max_trading_days INTEGER DEFAULT 0,
		is_trailing_drawdown INTEGER DEFAULT 0,
		consistency_rule_percent INTEGER DEFAULT 0,
		status TEXT DEFAULT 'active',
		stage TEXT DEFAULT 'evaluation',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Raw trade records: one per broker fill-pair or CSV row
	CREATE TABLE IF NOT EXISTS raw_trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		qty INTEGER NOT NULL,
		pnl REAL NOT NULL,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME NOT NULL,
		external_id TEXT DEFAULT '',
		tags TEXT DEFAULT '[]',
		notes TEXT DEFAULT '',
		grade TEXT DEFAULT '',
		emotion TEXT DEFAULT '',
		screenshot TEXT DEFAULT '',
		playbook_ids TEXT DEFAULT '[]',
		account_id TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON raw_trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON raw_trades(exit_time);
	CREATE INDEX IF NOT EXISTS idx_trades_account ON raw_trades(account_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Accounts Methods
// ============================================================================

// SaveAccount inserts or replaces a challenge account.
func (s *SQLiteStore) SaveAccount(ctx context.Context, acct *models.ChallengeAccount) error {
	isTrailing := 0
	if acct.IsTrailingDrawdown {
		isTrailing = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (id, name, account_size, profit_target, max_drawdown, daily_loss_limit, min_trading_days, max_trading_days, is_trailing_drawdown, consistency_rule_percent, status, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, acct.ID, acct.Name, acct.AccountSize, acct.ProfitTarget, acct.MaxDrawdown, acct.DailyLossLimit, acct.MinTradingDays, acct.MaxTradingDays, isTrailing, acct.ConsistencyRulePercent, acct.Status, acct.Stage, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

const accountColumns = "id, name, account_size, profit_target, max_drawdown, daily_loss_limit, min_trading_days, max_trading_days, is_trailing_drawdown, consistency_rule_percent, status, stage, created_at, updated_at"

func scanAccount(row interface{ Scan(...interface{}) error }) (*models.ChallengeAccount, error) {
	var a models.ChallengeAccount
	var isTrailing int
	err := row.Scan(&a.ID, &a.Name, &a.AccountSize, &a.ProfitTarget, &a.MaxDrawdown, &a.DailyLossLimit, &a.MinTradingDays, &a.MaxTradingDays, &isTrailing, &a.ConsistencyRulePercent, &a.Status, &a.Stage, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.IsTrailingDrawdown = isTrailing == 1
	return &a, nil
}

// GetAccount retrieves a single account by id. Returns nil when not found.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.ChallengeAccount, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	acct, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

// ListAccounts retrieves all accounts, newest first.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.ChallengeAccount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.ChallengeAccount
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *acct)
	}

	return accounts, rows.Err()
}

// UpdateAccountStatus updates an account's status and stage.
func (s *SQLiteStore) UpdateAccountStatus(ctx context.Context, id string, status models.AccountStatus, stage models.AccountStage) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET status = ?, stage = ?, updated_at = ? WHERE id = ?
	`, status, stage, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}

// DeleteAccount removes an account and unlinks its trades.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE raw_trades SET account_id = '' WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("failed to unlink trades: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("account not found: %s", id)
	}

	return tx.Commit()
}

// ============================================================================
// Trades Methods
// ============================================================================

// SaveTrades saves raw trades in one transaction, replacing on id conflicts
// so re-imports are idempotent.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO raw_trades (id, symbol, side, entry_price, exit_price, qty, pnl, entry_time, exit_time, external_id, tags, notes, grade, emotion, screenshot, playbook_ids, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		tags, _ := json.Marshal(t.Tags)
		playbooks, _ := json.Marshal(t.PlaybookIDs)
		_, err := stmt.ExecContext(ctx, t.ID, t.Symbol, t.Side, t.EntryPrice, t.ExitPrice, t.Qty, t.PnL, t.EntryTime, t.ExitTime, t.ExternalID, string(tags), t.Notes, t.Grade, t.Emotion, t.Screenshot, string(playbooks), t.AccountID)
		if err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTrades retrieves raw trades matching the filter, oldest exit first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.RawTrade, error) {
	query := "SELECT id, symbol, side, entry_price, exit_price, qty, pnl, entry_time, exit_time, external_id, tags, notes, grade, emotion, screenshot, playbook_ids, account_id FROM raw_trades WHERE 1=1"
	args := []interface{}{}

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	} else if filter.Unlinked {
		query += " AND account_id = ''"
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, filter.Side)
	}
	if !filter.StartDate.IsZero() {
		query += " AND exit_time >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND exit_time <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY exit_time ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.RawTrade
	for rows.Next() {
		var t models.RawTrade
		var tagsJSON, playbooksJSON string

		if err := rows.Scan(&t.ID, &t.Symbol, &t.Side, &t.EntryPrice, &t.ExitPrice, &t.Qty, &t.PnL, &t.EntryTime, &t.ExitTime, &t.ExternalID, &tagsJSON, &t.Notes, &t.Grade, &t.Emotion, &t.Screenshot, &playbooksJSON, &t.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		json.Unmarshal([]byte(tagsJSON), &t.Tags)
		json.Unmarshal([]byte(playbooksJSON), &t.PlaybookIDs)
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// LinkTrades assigns trades to an account. A trade belongs to at most one
// account, so linking overwrites any previous link.
func (s *SQLiteStore) LinkTrades(ctx context.Context, accountID string, tradeIDs []string) error {
	if len(tradeIDs) == 0 {
		return nil
	}

	var acctExists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE id = ?", accountID).Scan(&acctExists); err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if acctExists == 0 {
		return fmt.Errorf("account not found: %s", accountID)
	}

	query, args := tradeIDQuery("UPDATE raw_trades SET account_id = ? WHERE id IN", tradeIDs, accountID)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to link trades: %w", err)
	}
	return nil
}

// UnlinkTrades clears the account link on the given trades.
func (s *SQLiteStore) UnlinkTrades(ctx context.Context, tradeIDs []string) error {
	if len(tradeIDs) == 0 {
		return nil
	}

	query, args := tradeIDQuery("UPDATE raw_trades SET account_id = '' WHERE id IN", tradeIDs)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to unlink trades: %w", err)
	}
	return nil
}

// DeleteTrade removes a single raw trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM raw_trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("trade not found: %s", id)
	}
	return nil
}

// tradeIDQuery builds an "... IN (?, ?, ...)" statement with leading args
// followed by the trade ids.
func tradeIDQuery(prefix string, tradeIDs []string, leading ...interface{}) (string, []interface{}) {
	placeholders := make([]string, len(tradeIDs))
	args := append([]interface{}{}, leading...)
	for i, id := range tradeIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	return prefix + " (" + strings.Join(placeholders, ",") + ")", args
}
