package importer

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propjournal/internal/models"
)

const sampleCSV = `symbol,side,qty,entry_price,exit_price,pnl,entry_time,exit_time,entry_fill_id,exit_fill_id,notes,tags
NQ,long,2,5000,5010,400,2026-03-02 09:30:00,2026-03-02 09:45:00,100,200,first exit,breakout;a-plus
NQ,long,1,5000,5020,400,2026-03-02 09:30:00,2026-03-02 10:00:00,100,201,,
ES,short,3,4000,3990,150,2026-03-02T11:00:00,2026-03-02T11:30:00,,,,
`

func newImporter() *Importer {
	return New(zerolog.Nop())
}

func TestRead_ValidRows(t *testing.T) {
	result, err := newImporter().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Trades, 3)

	first := result.Trades[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "NQ", first.Symbol)
	assert.Equal(t, models.SideLong, first.Side)
	assert.Equal(t, 2, first.Qty)
	assert.Equal(t, "csv-100-200", first.ExternalID)
	assert.Equal(t, "first exit", first.Notes)
	assert.Equal(t, []string{"breakout", "a-plus"}, first.Tags)

	// Both partials share the entry fill so consolidation can link them.
	assert.Equal(t, "csv-100-201", result.Trades[1].ExternalID)

	// No fill ids: no external id at all.
	assert.Equal(t, "", result.Trades[2].ExternalID)
	assert.Equal(t, models.SideShort, result.Trades[2].Side)
}

func TestRead_UniqueIDs(t *testing.T) {
	result, err := newImporter().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, tr := range result.Trades {
		assert.False(t, seen[tr.ID], "duplicate id %s", tr.ID)
		seen[tr.ID] = true
	}
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	csv := `symbol,side,qty,entry_price,exit_price,pnl,entry_time,exit_time,entry_fill_id,exit_fill_id,notes,tags
NQ,long,2,5000,5010,400,2026-03-02 09:30:00,2026-03-02 09:45:00,1,2,,
,long,2,5000,5010,400,2026-03-02 09:30:00,2026-03-02 09:45:00,1,3,,
NQ,sideways,2,5000,5010,400,2026-03-02 09:30:00,2026-03-02 09:45:00,1,4,,
NQ,long,0,5000,5010,400,2026-03-02 09:30:00,2026-03-02 09:45:00,1,5,,
NQ,long,2,5000,5010,400,not-a-time,2026-03-02 09:45:00,1,6,,
NQ,long,2,5000,5010,400,2026-03-02 09:45:00,2026-03-02 09:30:00,1,7,,
`
	result, err := newImporter().Read(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 5, result.Skipped)
}

func TestRead_SideAliases(t *testing.T) {
	csv := `symbol,side,qty,entry_price,exit_price,pnl,entry_time,exit_time,entry_fill_id,exit_fill_id,notes,tags
NQ,buy,1,100,110,10,2026-03-02 09:30:00,2026-03-02 09:45:00,,,,
NQ,SELL,1,100,90,10,2026-03-02 09:30:00,2026-03-02 09:45:00,,,,
NQ,B,1,100,110,10,2026-03-02 09:30:00,2026-03-02 09:45:00,,,,
`
	result, err := newImporter().Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 3, result.Imported)
	assert.Equal(t, models.SideLong, result.Trades[0].Side)
	assert.Equal(t, models.SideShort, result.Trades[1].Side)
	assert.Equal(t, models.SideLong, result.Trades[2].Side)
}

func TestRead_TimestampFormats(t *testing.T) {
	csv := `symbol,side,qty,entry_price,exit_price,pnl,entry_time,exit_time,entry_fill_id,exit_fill_id,notes,tags
NQ,long,1,100,110,10,2026-03-02T09:30:00Z,2026-03-02T09:45:00Z,,,,
NQ,long,1,100,110,10,03/02/2026 09:30,03/02/2026 09:45,,,,
`
	result, err := newImporter().Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
}

func TestExternalID(t *testing.T) {
	assert.Equal(t, "csv-100-200", externalID("100", "200"))
	assert.Equal(t, "csv-100-", externalID("100", ""))
	assert.Equal(t, "", externalID("", ""))
	assert.Equal(t, "csv-100-200", externalID(" 100 ", " 200 "))
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"a", "b"}, splitTags("a;b"))
	assert.Equal(t, []string{"a", "b"}, splitTags(" a ; ; b "))
}
