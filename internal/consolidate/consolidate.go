// Package consolidate groups raw partial-fill trade records into logical
// round-trip trades. Records that share a fill identifier belong to the same
// trade; grouping is computed as connected components over shared fills, so
// chains of partial entries and exits merge correctly.
package consolidate

import (
	"fmt"
	"sort"
	"strings"

	"propjournal/internal/models"
)

// ConsolidatedIDPrefix marks the synthetic id assigned to a merged group.
// Ids carrying this prefix never parse as fill pairs, which keeps
// consolidation idempotent.
const ConsolidatedIDPrefix = "consolidated-"

// NotesSeparator joins the notes of merged members, ordered by exit time.
const NotesSeparator = " | "

// Consolidate collapses raw trades that are partial fills of one logical
// trade into a single ConsolidatedTrade each. Genuinely separate trades stay
// separate. The result is deterministic regardless of input order.
func Consolidate(trades []models.RawTrade) []models.ConsolidatedTrade {
	if len(trades) == 0 {
		return nil
	}

	type bucketKey struct {
		symbol string
		side   models.TradeSide
	}
	buckets := make(map[bucketKey][]models.RawTrade)
	for _, t := range trades {
		k := bucketKey{NormalizeSymbol(t.Symbol), t.Side}
		buckets[k] = append(buckets[k], t)
	}

	out := make([]models.ConsolidatedTrade, 0, len(buckets))
	for _, members := range buckets {
		for _, group := range groupBucket(members) {
			out = append(out, merge(group))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].EntryTime.Before(out[j].EntryTime)
		}
		if !out[i].ExitTime.Equal(out[j].ExitTime) {
			return out[i].ExitTime.Before(out[j].ExitTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// groupBucket partitions the trades of one (symbol, side) bucket into
// logical trade groups. Trades with parseable fill pairs are grouped by
// graph connectivity; the rest fall back to entry-identity grouping.
func groupBucket(members []models.RawTrade) [][]models.RawTrade {
	// Fix traversal order up front so merge tie-breaks cannot depend on
	// input order.
	sort.Slice(members, func(i, j int) bool {
		if !members[i].ExitTime.Equal(members[j].ExitTime) {
			return members[i].ExitTime.Before(members[j].ExitTime)
		}
		return members[i].ID < members[j].ID
	})

	var linked []models.RawTrade
	var pairs [][2]string
	var fallback []models.RawTrade
	for _, t := range members {
		if a, b, ok := ParseFillPair(t.ExternalID); ok {
			linked = append(linked, t)
			pairs = append(pairs, [2]string{a, b})
		} else {
			fallback = append(fallback, t)
		}
	}

	var groups [][]models.RawTrade
	if len(linked) > 0 {
		groups = append(groups, fillComponents(linked, pairs)...)
	}

	if len(fallback) > 0 {
		byIdentity := make(map[string][]models.RawTrade)
		var order []string
		for _, t := range fallback {
			key := entryIdentity(t)
			if _, ok := byIdentity[key]; !ok {
				order = append(order, key)
			}
			byIdentity[key] = append(byIdentity[key], t)
		}
		for _, key := range order {
			groups = append(groups, byIdentity[key])
		}
	}

	return groups
}

// fillComponents computes connected components over trades that share fill
// identifiers, using union-find with path compression.
func fillComponents(linked []models.RawTrade, pairs [][2]string) [][]models.RawTrade {
	parent := make([]int, len(linked))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[rb] = ra
		}
	}

	firstSeen := make(map[string]int)
	for i, pair := range pairs {
		for _, fill := range pair {
			if j, ok := firstSeen[fill]; ok {
				union(j, i)
			} else {
				firstSeen[fill] = i
			}
		}
	}

	components := make(map[int][]models.RawTrade)
	var order []int
	for i, t := range linked {
		root := find(i)
		if _, ok := components[root]; !ok {
			order = append(order, root)
		}
		components[root] = append(components[root], t)
	}

	groups := make([][]models.RawTrade, 0, len(order))
	for _, root := range order {
		groups = append(groups, components[root])
	}
	return groups
}

// entryIdentity is the weaker grouping key used when no fill pair is
// available: the entry fill id when the external id carries one, otherwise
// the entry price at fixed precision plus the entry time. Best effort for
// legacy and manually-entered records.
func entryIdentity(t models.RawTrade) string {
	if hint, ok := entryFillHint(t.ExternalID); ok {
		return "fill:" + hint
	}
	return fmt.Sprintf("px:%.2f@%d", t.EntryPrice, t.EntryTime.UnixNano())
}

// representative picks the member whose identity fields (entry, symbol,
// side) and annotations seed the consolidated trade. User-entered
// annotations win so they are not silently dropped; otherwise the earliest
// exit. Groups arrive exit-time ordered, so each scan returns the earliest
// member of its tier.
func representative(group []models.RawTrade) models.RawTrade {
	for _, t := range group {
		if strings.TrimSpace(t.Notes) != "" {
			return t
		}
	}
	for _, t := range group {
		if len(t.Tags) > 0 {
			return t
		}
	}
	for _, t := range group {
		if t.Screenshot != "" {
			return t
		}
	}
	return group[0]
}

// merge derives the ConsolidatedTrade for one group. The entry is a single
// real event and comes from the representative; the exit may be genuinely
// split, so the exit price is quantity-weighted and the exit time is the
// last partial's.
func merge(group []models.RawTrade) models.ConsolidatedTrade {
	rep := representative(group)

	ct := models.ConsolidatedTrade{
		ID:         rep.ID,
		Symbol:     NormalizeSymbol(rep.Symbol),
		Side:       rep.Side,
		EntryPrice: rep.EntryPrice,
		EntryTime:  rep.EntryTime,
		Screenshot: rep.Screenshot,
	}
	if len(group) > 1 {
		ct.ID = ConsolidatedIDPrefix + rep.ID
	}

	var exitWeighted float64
	var notes []string
	tagSet := make(map[string]struct{})
	playbookSet := make(map[string]struct{})

	for _, t := range group {
		ct.Qty += t.Qty
		ct.PnL += t.PnL
		exitWeighted += t.ExitPrice * float64(t.Qty)
		if t.ExitTime.After(ct.ExitTime) {
			ct.ExitTime = t.ExitTime
		}
		for _, tag := range t.Tags {
			tagSet[tag] = struct{}{}
		}
		for _, pb := range t.PlaybookIDs {
			playbookSet[pb] = struct{}{}
		}
		if strings.TrimSpace(t.Notes) != "" {
			notes = append(notes, t.Notes)
		}
		if ct.Grade == "" && t.Grade != "" {
			ct.Grade = t.Grade
		}
		if ct.Emotion == "" && t.Emotion != "" {
			ct.Emotion = t.Emotion
		}
		ct.Partials = append(ct.Partials, models.Partial{
			ID:        t.ID,
			Qty:       t.Qty,
			ExitPrice: t.ExitPrice,
			ExitTime:  t.ExitTime,
			PnL:       t.PnL,
		})
	}

	if ct.Grade == "" {
		ct.Grade = rep.Grade
	}
	if ct.Emotion == "" {
		ct.Emotion = rep.Emotion
	}
	if ct.Qty > 0 {
		ct.AvgExitPrice = exitWeighted / float64(ct.Qty)
	}
	ct.Notes = strings.Join(notes, NotesSeparator)
	ct.Tags = sortedKeys(tagSet)
	ct.PlaybookIDs = sortedKeys(playbookSet)

	return ct
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
