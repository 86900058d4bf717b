// Package resolve holds the conflict resolution primitives shared by the
// sync type handlers: last-writer-wins timestamp comparison, item-level
// set merging, and timestamped list merging.
package resolve

import (
	"sort"
	"time"

	"voyago/internal/models"
)

// LatestWins reports whether an incoming write with timestamp incoming
// should be applied over state last written at applied. Equal timestamps
// lose: re-delivery of an already-applied snapshot stays a no-op.
func LatestWins(incoming, applied time.Time) bool {
	if applied.IsZero() {
		return true
	}
	return incoming.After(applied)
}

// MergeSet applies ordered add/remove operations to an existing set and
// returns the result sorted ascending. Removing an absent id and adding a
// present one are both no-ops.
func MergeSet(existing []int64, ops []models.FavoriteOp) []int64 {
	set := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		set[id] = struct{}{}
	}

	for _, op := range ops {
		switch op.Action {
		case models.FavoriteAdd:
			set[op.ProductID] = struct{}{}
		case models.FavoriteRemove:
			delete(set, op.ProductID)
		}
	}

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MergeTimestamped merges two viewed-history lists by product id, keeping
// the newest timestamp per id, sorts descending by timestamp, and
// truncates to limit entries.
func MergeTimestamped(existing, incoming []models.ViewedExcursion, limit int) []models.ViewedExcursion {
	byID := make(map[int64]models.ViewedExcursion, len(existing)+len(incoming))
	for _, e := range existing {
		byID[e.ProductID] = e
	}
	for _, e := range incoming {
		if cur, ok := byID[e.ProductID]; !ok || e.ViewedAt.After(cur.ViewedAt) {
			byID[e.ProductID] = e
		}
	}

	merged := make([]models.ViewedExcursion, 0, len(byID))
	for _, e := range byID {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ViewedAt.Equal(merged[j].ViewedAt) {
			return merged[i].ProductID < merged[j].ProductID
		}
		return merged[i].ViewedAt.After(merged[j].ViewedAt)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
