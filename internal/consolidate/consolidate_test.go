package consolidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propjournal/internal/models"
)

func mkTrade(id, symbol string, side models.TradeSide, externalID string, qty int, entryPx, exitPx, pnl float64, entry, exit time.Time) models.RawTrade {
	return models.RawTrade{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		EntryPrice: entryPx,
		ExitPrice:  exitPx,
		Qty:        qty,
		PnL:        pnl,
		EntryTime:  entry,
		ExitTime:   exit,
		ExternalID: externalID,
	}
}

var (
	t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	t1 = t0.Add(5 * time.Minute)
	t2 = t0.Add(10 * time.Minute)
	t3 = t0.Add(15 * time.Minute)
)

func TestConsolidate_Empty(t *testing.T) {
	assert.Nil(t, Consolidate(nil))
	assert.Nil(t, Consolidate([]models.RawTrade{}))
}

func TestConsolidate_SingleTradeKeepsID(t *testing.T) {
	raw := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 2, 100, 110, 20, t0, t1)
	out := Consolidate([]models.RawTrade{raw})

	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID, "single-member groups keep the original id")
	assert.Equal(t, 2, out[0].Qty)
	assert.Equal(t, 110.0, out[0].AvgExitPrice)
	require.Len(t, out[0].Partials, 1)
}

func TestConsolidate_SharedEntryFillMerges(t *testing.T) {
	// One entry of 3 contracts exited in two partials.
	a := mkTrade("a", "NQ", models.SideLong, "csv-100-200", 2, 5000, 5010, 40, t0, t1)
	b := mkTrade("b", "NQ", models.SideLong, "csv-100-201", 1, 5000, 5020, 20, t0, t2)

	out := Consolidate([]models.RawTrade{a, b})
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "consolidated-a", got.ID)
	assert.Equal(t, 3, got.Qty)
	assert.Equal(t, 60.0, got.PnL)
	assert.Equal(t, 5000.0, got.EntryPrice)
	// qty-weighted: (5010*2 + 5020*1) / 3
	assert.InDelta(t, 5013.3333, got.AvgExitPrice, 0.001)
	assert.True(t, got.ExitTime.Equal(t2), "exit time is the last partial's")
	require.Len(t, got.Partials, 2)
	assert.Equal(t, "a", got.Partials[0].ID)
	assert.Equal(t, "b", got.Partials[1].ID)
}

func TestConsolidate_ChainedFillsMergeTransitively(t *testing.T) {
	// a and b share no fill directly but both connect through b's entry:
	// a: 100-200, b: 200-300 share fill 200, c: 300-400 shares 300 with b.
	a := mkTrade("a", "ES", models.SideShort, "100-200", 1, 4000, 3990, 10, t0, t1)
	b := mkTrade("b", "ES", models.SideShort, "200-300", 1, 4000, 3985, 15, t0, t2)
	c := mkTrade("c", "ES", models.SideShort, "300-400", 1, 4000, 3980, 20, t0, t3)

	out := Consolidate([]models.RawTrade{a, b, c})
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Qty)
	assert.Equal(t, 45.0, out[0].PnL)
	assert.Len(t, out[0].Partials, 3)
}

func TestConsolidate_DifferentSymbolsStaySeparate(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 100, 110, 10, t0, t1)
	b := mkTrade("b", "ES", models.SideLong, "csv-1-3", 1, 100, 110, 10, t0, t1)

	out := Consolidate([]models.RawTrade{a, b})
	assert.Len(t, out, 2, "same fill ids under different symbols never merge")
}

func TestConsolidate_DifferentSidesStaySeparate(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 100, 110, 10, t0, t1)
	b := mkTrade("b", "NQ", models.SideShort, "csv-1-3", 1, 100, 90, 10, t0, t1)

	out := Consolidate([]models.RawTrade{a, b})
	assert.Len(t, out, 2)
}

func TestConsolidate_ContractRollVariantsShareBucket(t *testing.T) {
	a := mkTrade("a", "NQH4", models.SideLong, "csv-7-8", 2, 100, 105, 10, t0, t1)
	b := mkTrade("b", "@NQ", models.SideLong, "csv-7-9", 1, 100, 108, 8, t0, t2)

	out := Consolidate([]models.RawTrade{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "NQ", out[0].Symbol)
	assert.Equal(t, 3, out[0].Qty)
}

func TestConsolidate_FallbackGroupsByEntryIdentity(t *testing.T) {
	// No parseable fill pairs; same entry price and time group together.
	a := mkTrade("a", "NQ", models.SideLong, "", 1, 5000, 5010, 10, t0, t1)
	b := mkTrade("b", "NQ", models.SideLong, "", 1, 5000, 5020, 20, t0, t2)
	c := mkTrade("c", "NQ", models.SideLong, "", 1, 5050, 5060, 10, t1, t2)

	out := Consolidate([]models.RawTrade{a, b, c})
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Qty)
	assert.Equal(t, 1, out[1].Qty)
}

func TestConsolidate_LinkedAndFallbackDoNotMix(t *testing.T) {
	linked := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 5000, 5010, 10, t0, t1)
	manual := mkTrade("b", "NQ", models.SideLong, "", 1, 5000, 5020, 20, t0, t2)

	out := Consolidate([]models.RawTrade{linked, manual})
	assert.Len(t, out, 2, "fill-linked trades never merge with fallback trades")
}

func TestConsolidate_RepresentativePrefersNotes(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 5000, 5010, 10, t0, t1)
	b := mkTrade("b", "NQ", models.SideLong, "csv-1-3", 1, 5000, 5020, 20, t0, t2)
	b.Notes = "scaled out into strength"
	b.Grade = "A"

	out := Consolidate([]models.RawTrade{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "consolidated-b", out[0].ID, "the annotated member is the representative")
	assert.Equal(t, "scaled out into strength", out[0].Notes)
	assert.Equal(t, "A", out[0].Grade)
}

func TestConsolidate_MergesAnnotations(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 5000, 5010, 10, t0, t1)
	a.Tags = []string{"breakout", "a-plus"}
	a.Notes = "first exit"
	b := mkTrade("b", "NQ", models.SideLong, "csv-1-3", 1, 5000, 5020, 20, t0, t2)
	b.Tags = []string{"breakout", "runner"}
	b.Notes = "second exit"
	b.PlaybookIDs = []string{"pb1"}

	out := Consolidate([]models.RawTrade{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"a-plus", "breakout", "runner"}, out[0].Tags)
	assert.Equal(t, []string{"pb1"}, out[0].PlaybookIDs)
	assert.Equal(t, "first exit | second exit", out[0].Notes, "notes joined in exit order")
}

func TestConsolidate_QtyConservation(t *testing.T) {
	trades := []models.RawTrade{
		mkTrade("a", "NQ", models.SideLong, "csv-1-2", 2, 100, 105, 10, t0, t1),
		mkTrade("b", "NQ", models.SideLong, "csv-1-3", 3, 100, 106, 18, t0, t2),
		mkTrade("c", "ES", models.SideShort, "", 4, 4000, 3990, 40, t0, t1),
		mkTrade("d", "ES", models.SideLong, "9-10", 1, 4000, 4010, 10, t0, t3),
	}

	var wantQty int
	var wantPnL float64
	for _, tr := range trades {
		wantQty += tr.Qty
		wantPnL += tr.PnL
	}

	out := Consolidate(trades)
	var gotQty int
	var gotPnL float64
	for _, ct := range out {
		gotQty += ct.Qty
		gotPnL += ct.PnL
	}
	assert.Equal(t, wantQty, gotQty)
	assert.InDelta(t, wantPnL, gotPnL, 1e-9)
}

func TestConsolidate_IdempotentOnConsolidatedIDs(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 5000, 5010, 10, t0, t1)
	b := mkTrade("b", "NQ", models.SideLong, "csv-1-3", 1, 5000, 5020, 20, t0, t2)

	first := Consolidate([]models.RawTrade{a, b})
	require.Len(t, first, 1)

	// A record carrying the synthetic id must not re-link via fill parsing.
	again := mkTrade(first[0].ID, "NQ", models.SideLong, first[0].ID, first[0].Qty, 5000, first[0].AvgExitPrice, first[0].PnL, t0, t2)
	fresh := mkTrade("z", "NQ", models.SideLong, "csv-9-10", 1, 6000, 6010, 10, t3, t3)

	out := Consolidate([]models.RawTrade{again, fresh})
	assert.Len(t, out, 2)
}

func TestConsolidate_OutputSortedByEntryTime(t *testing.T) {
	a := mkTrade("a", "NQ", models.SideLong, "csv-1-2", 1, 100, 110, 10, t2, t3)
	b := mkTrade("b", "ES", models.SideLong, "csv-3-4", 1, 100, 110, 10, t0, t1)

	out := Consolidate([]models.RawTrade{a, b})
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}
