package report

import (
	"slices"

	"github.com/parallax-ledger/parallax/internal/scholar"
)

// Delta is the deterministic before/after comparison of a base and a
// shadow query result. Added and Removed are ascending lexical lists so
// repeated computation is byte-identical.
type Delta struct {
	VerdictChanged bool            `json:"verdict_changed"`
	Before         scholar.Outcome `json:"before"`
	After          scholar.Outcome `json:"after"`
	Added          []string        `json:"added"`
	Removed        []string        `json:"removed"`

	// ScoreDelta is an extension point for finer confidence scoring
	// deltas; it stays empty until a concrete formula exists.
	ScoreDelta map[string]int64 `json:"score_delta"`
}

// ComputeDelta partitions the matched fact identifiers of both results
// into added (shadow minus base) and removed (base minus shadow). The
// verdict-changed flag is coarse: it tracks a change in match
// cardinality; the categorical outcomes ride alongside for callers that
// want the finer signal.
func ComputeDelta(base, shadowRes scholar.Result) Delta {
	baseSet := toSet(base.MatchedIDs)
	shadowSet := toSet(shadowRes.MatchedIDs)

	added := make([]string, 0)
	for id := range shadowSet {
		if !baseSet[id] {
			added = append(added, id)
		}
	}
	removed := make([]string, 0)
	for id := range baseSet {
		if !shadowSet[id] {
			removed = append(removed, id)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)

	return Delta{
		VerdictChanged: len(base.MatchedIDs) != len(shadowRes.MatchedIDs),
		Before:         base.Outcome,
		After:          shadowRes.Outcome,
		Added:          added,
		Removed:        removed,
		ScoreDelta:     map[string]int64{},
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
