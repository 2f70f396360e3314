// Package importer reads broker CSV exports into raw trade records.
package importer

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"propjournal/internal/errors"
	"propjournal/internal/models"
)

// csvRow mirrors one line of a broker fill export.
type csvRow struct {
	Symbol      string  `csv:"symbol"`
	Side        string  `csv:"side"`
	Qty         int     `csv:"qty"`
	EntryPrice  float64 `csv:"entry_price"`
	ExitPrice   float64 `csv:"exit_price"`
	PnL         float64 `csv:"pnl"`
	EntryTime   string  `csv:"entry_time"`
	ExitTime    string  `csv:"exit_time"`
	EntryFillID string  `csv:"entry_fill_id"`
	ExitFillID  string  `csv:"exit_fill_id"`
	Notes       string  `csv:"notes"`
	Tags        string  `csv:"tags"`
}

// timeLayouts are tried in order when parsing timestamps. Broker exports
// are inconsistent about this, so be liberal.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
	Trades   []models.RawTrade
}

// Importer converts CSV fill exports into raw trades.
type Importer struct {
	logger  zerolog.Logger
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates an importer.
func New(logger zerolog.Logger) *Importer {
	return &Importer{
		logger:  logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
}

// Read parses a CSV stream into raw trades. Rows that fail validation are
// skipped and counted, never fatal; an unparseable header is.
func (imp *Importer) Read(r io.Reader) (*Result, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.NewImportError("csv", fmt.Sprintf("failed to parse csv: %v", err))
	}

	result := &Result{}
	for i, row := range rows {
		trade, err := imp.convert(row)
		if err != nil {
			imp.logger.Warn().Int("row", i+2).Err(err).Msg("Skipping malformed csv row")
			result.Skipped++
			continue
		}
		result.Trades = append(result.Trades, *trade)
		result.Imported++
	}

	return result, nil
}

func (imp *Importer) convert(row *csvRow) (*models.RawTrade, error) {
	symbol := strings.TrimSpace(row.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("missing symbol")
	}

	side, err := parseSide(row.Side)
	if err != nil {
		return nil, err
	}
	if row.Qty <= 0 {
		return nil, fmt.Errorf("invalid qty %d", row.Qty)
	}

	entryTime, err := parseTime(row.EntryTime)
	if err != nil {
		return nil, fmt.Errorf("invalid entry_time %q: %w", row.EntryTime, err)
	}
	exitTime, err := parseTime(row.ExitTime)
	if err != nil {
		return nil, fmt.Errorf("invalid exit_time %q: %w", row.ExitTime, err)
	}
	if exitTime.Before(entryTime) {
		return nil, fmt.Errorf("exit_time before entry_time")
	}

	trade := &models.RawTrade{
		ID:         ulid.MustNew(ulid.Timestamp(imp.now()), imp.entropy).String(),
		Symbol:     symbol,
		Side:       side,
		EntryPrice: row.EntryPrice,
		ExitPrice:  row.ExitPrice,
		Qty:        row.Qty,
		PnL:        row.PnL,
		EntryTime:  entryTime,
		ExitTime:   exitTime,
		ExternalID: externalID(row.EntryFillID, row.ExitFillID),
		Notes:      strings.TrimSpace(row.Notes),
		Tags:       splitTags(row.Tags),
	}
	return trade, nil
}

func parseSide(s string) (models.TradeSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "b":
		return models.SideLong, nil
	case "short", "sell", "s":
		return models.SideShort, nil
	default:
		return "", fmt.Errorf("invalid side %q", s)
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// externalID encodes the fill pair so downstream consolidation can link
// partial fills that share an entry fill.
func externalID(entryFill, exitFill string) string {
	entryFill = strings.TrimSpace(entryFill)
	exitFill = strings.TrimSpace(exitFill)
	if entryFill == "" && exitFill == "" {
		return ""
	}
	return fmt.Sprintf("csv-%s-%s", entryFill, exitFill)
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
