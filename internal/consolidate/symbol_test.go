package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"NQ", "NQ"},
		{"nq", "NQ"},
		{"  ES  ", "ES"},
		{"@ES", "ES"},
		{"@NQH4", "NQ"},
		{"NQH4", "NQ"},
		{"NQH24", "NQ"},
		{"ESZ24", "ES"},
		{"ESM4", "ES"},
		{"ESU4", "ES"},
		{"NQ MAR 24", "NQ"},
		{"nq mar 24", "NQ"},
		{"ES DEC 2024", "ES"},
		{"NQ extra tokens", "NQ"},
		// Month-code stripping must not empty the symbol entirely
		{"M2", "M2"},
		{"H4", "H4"},
		// Non-futures tickers pass through
		{"AAPL", "AAPL"},
		{"MSFT", "MSFT"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSymbol(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeSymbol_SameInstrumentAcrossRolls(t *testing.T) {
	variants := []string{"NQH4", "NQM4", "NQU24", "NQZ24", "@NQ", "nq", "NQ MAR 24"}
	for _, v := range variants {
		assert.Equal(t, "NQ", NormalizeSymbol(v))
	}
}

func TestParseFillPair(t *testing.T) {
	tests := []struct {
		id        string
		wantEntry string
		wantExit  string
		wantOK    bool
	}{
		{"csv-100-200", "100", "200", true},
		{"csv-abc-def", "abc", "def", true},
		{"100-200", "100", "200", true},
		{"123456-789012", "123456", "789012", true},
		{"csv-100-", "", "", false},
		{"csv--200", "", "", false},
		{"csv-", "", "", false},
		{"", "", "", false},
		{"manual", "", "", false},
		{"abc-def", "", "", false},
		{"consolidated-abc", "", "", false},
		{"consolidated-100-200", "", "", false},
	}

	for _, tc := range tests {
		entry, exit, ok := ParseFillPair(tc.id)
		assert.Equal(t, tc.wantOK, ok, "ok for %q", tc.id)
		assert.Equal(t, tc.wantEntry, entry, "entry for %q", tc.id)
		assert.Equal(t, tc.wantExit, exit, "exit for %q", tc.id)
	}
}

func TestEntryFillHint(t *testing.T) {
	hint, ok := entryFillHint("csv-100")
	assert.True(t, ok)
	assert.Equal(t, "100", hint)

	_, ok = entryFillHint("100-200")
	assert.False(t, ok)

	_, ok = entryFillHint("manual")
	assert.False(t, ok)
}
