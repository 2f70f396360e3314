package consolidate

import (
	"regexp"
	"strings"
)

// Futures contract suffixes: a month code letter plus a 1-2 digit year
// ("NQH4", "ESZ24") or a verbose month name plus year ("NQ MAR 24").
var (
	monthCodeRe    = regexp.MustCompile(`[HMUZ]\d{1,2}$`)
	verboseMonthRe = regexp.MustCompile(`\s+(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\s*\d{1,4}$`)
)

// NormalizeSymbol strips contract month/year decorations from an instrument
// ticker so the same instrument compares equal across contract rolls:
// "NQH4" -> "NQ", "@ES" -> "ES", "nq mar 24" -> "NQ".
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "@")
	s = verboseMonthRe.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	if stripped := monthCodeRe.ReplaceAllString(s, ""); stripped != "" {
		s = stripped
	}
	return s
}
