package consolidate

import (
	"regexp"
	"strings"
)

// Broker-synced external ids are two numeric fill ids joined by a dash.
var brokerPairRe = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseFillPair extracts the (entry, exit) fill identifiers from a trade's
// external id. Two formats are recognized:
//
//	csv-<entryFill>-<exitFill>   CSV-import records
//	<entryFill>-<exitFill>       broker-sync records (both parts numeric)
//
// Anything else (manual entries, "consolidated-" synthetic ids) is not a
// fill pair and reports ok=false.
func ParseFillPair(externalID string) (entry, exit string, ok bool) {
	if strings.HasPrefix(externalID, "csv-") {
		parts := strings.Split(externalID, "-")
		if len(parts) >= 3 && parts[1] != "" && parts[2] != "" {
			return parts[1], parts[2], true
		}
		return "", "", false
	}
	if m := brokerPairRe.FindStringSubmatch(externalID); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// entryFillHint extracts a best-effort entry fill id from an external id
// that did not parse as a full fill pair. Used to group legacy records that
// carry partial structure ("csv-<entryFill>").
func entryFillHint(externalID string) (string, bool) {
	if !strings.HasPrefix(externalID, "csv-") {
		return "", false
	}
	parts := strings.Split(externalID, "-")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1], true
	}
	return "", false
}
