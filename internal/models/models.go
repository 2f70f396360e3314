// Package models provides domain models for the trading journal.
package models

import "time"

// TradeSide represents the direction of a trade.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// RawTrade is one broker fill-pair or imported CSV row: a closed execution
// with realized P&L. A logical trade may be reported as several RawTrades
// when the trader scaled in or out.
type RawTrade struct {
	ID         string
	Symbol     string
	Side       TradeSide
	EntryPrice float64
	ExitPrice  float64
	Qty        int
	PnL        float64
	EntryTime  time.Time
	ExitTime   time.Time

	// ExternalID encodes the entry/exit fill identifiers when the source
	// provides them: "csv-<entry>-<exit>" for CSV imports, "<entry>-<exit>"
	// for broker-synced records. Empty or unparseable for manual entries.
	ExternalID string

	Tags        []string
	Notes       string
	Grade       string
	Emotion     string
	Screenshot  string
	PlaybookIDs []string

	// AccountID links the trade to a challenge account; empty means unlinked.
	// A trade belongs to at most one account at a time.
	AccountID string
}

// Partial records one member execution of a consolidated trade, kept for
// audit and debugging.
type Partial struct {
	ID        string
	Qty       int
	ExitPrice float64
	ExitTime  time.Time
	PnL       float64
}

// ConsolidatedTrade is one logical round-trip trade derived from a connected
// group of RawTrades. It is a computed view, never persisted.
type ConsolidatedTrade struct {
	ID           string
	Symbol       string
	Side         TradeSide
	EntryPrice   float64
	EntryTime    time.Time
	AvgExitPrice float64
	ExitTime     time.Time
	Qty          int
	PnL          float64
	Tags         []string
	PlaybookIDs  []string
	Notes        string
	Grade        string
	Emotion      string
	Screenshot   string
	Partials     []Partial
}
