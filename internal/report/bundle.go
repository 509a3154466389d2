package report

import (
	"slices"

	"github.com/parallax-ledger/parallax/internal/scholar"
)

// Origin labels for result bundles.
const (
	OriginBase   = "base"
	OriginShadow = "shadow"
)

// FactRecord is one matched fact inside a bundle, annotated with the
// reality it came from.
type FactRecord struct {
	Origin     string `json:"origin"`
	CellID     string `json:"cell_id"`
	Namespace  string `json:"namespace"`
	Subject    string `json:"subject"`
	Predicate  string `json:"predicate"`
	Object     string `json:"object"`
	Confidence int64  `json:"confidence"`
	Bridged    bool   `json:"bridged"`
}

// Bundle is an origin-tagged view of one query result, kept purely for
// downstream auditability. Facts are sorted by predicate so the bundle
// serializes deterministically.
type Bundle struct {
	Origin     string       `json:"origin"`
	Outcome    string       `json:"outcome"`
	MatchedIDs []string     `json:"matched_ids"`
	Facts      []FactRecord `json:"facts"`
}

// FromResult converts a query result into an untagged bundle.
func FromResult(res scholar.Result) Bundle {
	facts := make([]FactRecord, 0, len(res.Facts))
	for _, f := range res.Facts {
		facts = append(facts, FactRecord{
			CellID:     f.CellID,
			Namespace:  f.Namespace,
			Subject:    f.Subject,
			Predicate:  f.Predicate,
			Object:     f.Object,
			Confidence: f.Confidence,
			Bridged:    f.Bridged,
		})
	}
	slices.SortFunc(facts, func(a, b FactRecord) int {
		switch {
		case a.Predicate < b.Predicate:
			return -1
		case a.Predicate > b.Predicate:
			return 1
		}
		return 0
	})

	ids := make([]string, len(res.MatchedIDs))
	copy(ids, res.MatchedIDs)

	return Bundle{
		Outcome:    string(res.Outcome),
		MatchedIDs: ids,
		Facts:      facts,
	}
}

// TagOrigin returns a deep copy of the bundle annotated with the origin
// label at the top level and on every fact record. The input is never
// mutated.
func TagOrigin(b Bundle, origin string) Bundle {
	out := Bundle{
		Origin:     origin,
		Outcome:    b.Outcome,
		MatchedIDs: make([]string, len(b.MatchedIDs)),
		Facts:      make([]FactRecord, len(b.Facts)),
	}
	copy(out.MatchedIDs, b.MatchedIDs)
	for i, f := range b.Facts {
		f.Origin = origin
		out.Facts[i] = f
	}
	return out
}
