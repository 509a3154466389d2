package scholar

import (
	"fmt"
	"slices"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Scholar is the bitemporal query engine, bound to one chain.
type Scholar struct {
	chain *ledger.Chain
}

// New binds a Scholar to a chain.
func New(chain *ledger.Chain) *Scholar {
	return &Scholar{chain: chain}
}

// Query asks whether a subject satisfies a set of required predicates in
// a namespace, frozen at a (valid time, system time) pair.
type Query struct {
	Namespace     string   `json:"namespace"`
	Subject       string   `json:"subject"`
	Predicates    []string `json:"predicates"`
	MinConfidence int64    `json:"min_confidence"`
	ValidTime     int64    `json:"valid_time"`
	SystemTime    int64    `json:"system_time"`
}

// Outcome is the categorical authorization outcome of a query.
type Outcome string

const (
	// OutcomeGranted means every required predicate resolved at or above
	// the confidence floor.
	OutcomeGranted Outcome = "granted"

	// OutcomePartial means some, but not all, predicates resolved.
	OutcomePartial Outcome = "partial"

	// OutcomeDenied means no required predicate resolved.
	OutcomeDenied Outcome = "denied"
)

// MatchedFact is one resolved predicate in a query result.
type MatchedFact struct {
	CellID     string `json:"cell_id"`
	Namespace  string `json:"namespace"`
	Subject    string `json:"subject"`
	Predicate  string `json:"predicate"`
	Object     string `json:"object"`
	Confidence int64  `json:"confidence"`
	Bridged    bool   `json:"bridged"` // resolved across a namespace bridge
}

// Result is the outcome of one query: the matched facts keyed by
// predicate, their identifiers in ascending lexical order, and the
// categorical outcome.
type Result struct {
	Query      Query                  `json:"query"`
	Facts      map[string]MatchedFact `json:"facts"`
	MatchedIDs []string               `json:"matched_ids"`
	Outcome    Outcome                `json:"outcome"`
}

// Resolve evaluates a query against the bound chain. The chain is read,
// never written.
func (s *Scholar) Resolve(q Query) (Result, error) {
	if q.Namespace == "" {
		return Result{}, fmt.Errorf("scholar: query namespace is required")
	}
	if q.Subject == "" {
		return Result{}, fmt.Errorf("scholar: query subject is required")
	}
	if len(q.Predicates) == 0 {
		return Result{}, fmt.Errorf("scholar: query requires at least one predicate")
	}

	view := s.visibleView(q.ValidTime, q.SystemTime)

	floor := q.MinConfidence
	if policy, ok := view.policies[q.Namespace]; ok {
		if pf := policy.ConfidenceFloor; pf > floor {
			floor = pf
		}
	}

	facts := make(map[string]MatchedFact)
	for _, predicate := range q.Predicates {
		match, ok := view.resolveFact(q.Namespace, q.Subject, predicate)
		if !ok {
			continue
		}
		if match.Confidence < floor {
			continue
		}
		facts[predicate] = match
	}

	ids := make([]string, 0, len(facts))
	for _, f := range facts {
		ids = append(ids, f.CellID)
	}
	slices.Sort(ids)

	return Result{
		Query:      q,
		Facts:      facts,
		MatchedIDs: ids,
		Outcome:    outcomeFor(len(facts), len(q.Predicates)),
	}, nil
}

// FactAt resolves a single fact key at a frozen time pair.
func (s *Scholar) FactAt(namespace, subject, predicate string, validTime, systemTime int64) (MatchedFact, bool) {
	return s.visibleView(validTime, systemTime).resolveFact(namespace, subject, predicate)
}

// ActivePolicy returns the latest policy snapshot visible for a namespace
// at a system time.
func (s *Scholar) ActivePolicy(namespace string, systemTime int64) (ledger.PolicyPayload, bool) {
	view := s.visibleView(0, systemTime)
	p, ok := view.policies[namespace]
	return p, ok
}

// RuleByID returns the latest rule cell visible for a logic identifier at
// a system time.
func (s *Scholar) RuleByID(logicID string, systemTime int64) (*ledger.Cell, bool) {
	view := s.visibleView(0, systemTime)
	c, ok := view.rules[logicID]
	return c, ok
}

func outcomeFor(matched, required int) Outcome {
	switch {
	case matched == 0:
		return OutcomeDenied
	case matched < required:
		return OutcomePartial
	default:
		return OutcomeGranted
	}
}

// factKey identifies a fact observation point.
type factKey struct {
	namespace string
	subject   string
	predicate string
}

// chainView is the visible state of the chain at a frozen time pair.
// Later chain positions overwrite earlier ones per key (latest wins).
type chainView struct {
	facts    map[factKey]MatchedFact
	rules    map[string]*ledger.Cell
	policies map[string]ledger.PolicyPayload
	bridges  map[string]string // source namespace -> target namespace
}

func (s *Scholar) visibleView(validTime, systemTime int64) *chainView {
	view := &chainView{
		facts:    make(map[factKey]MatchedFact),
		rules:    make(map[string]*ledger.Cell),
		policies: make(map[string]ledger.PolicyPayload),
		bridges:  make(map[string]string),
	}

	for _, cell := range s.chain.Cells() {
		if cell.Header().Timestamp > systemTime {
			continue
		}

		switch p := cell.Payload().(type) {
		case ledger.FactPayload:
			if p.ValidFrom > validTime {
				continue
			}
			if p.ValidTo != 0 && p.ValidTo <= validTime {
				continue
			}
			key := factKey{p.Namespace, p.Subject, p.Predicate}
			view.facts[key] = MatchedFact{
				CellID:     cell.ID(),
				Namespace:  p.Namespace,
				Subject:    p.Subject,
				Predicate:  p.Predicate,
				Object:     p.Object,
				Confidence: p.Confidence,
			}
		case ledger.RulePayload:
			view.rules[p.LogicID] = cell
		case ledger.PolicyPayload:
			view.policies[p.Namespace] = p
		case ledger.BridgePayload:
			view.bridges[p.SourceNamespace] = p.TargetNamespace
		}
	}

	return view
}

// resolveFact looks up a fact key, following at most one bridge hop when
// the key is absent in the queried namespace.
func (v *chainView) resolveFact(namespace, subject, predicate string) (MatchedFact, bool) {
	if f, ok := v.facts[factKey{namespace, subject, predicate}]; ok {
		return f, true
	}
	target, ok := v.bridges[namespace]
	if !ok {
		return MatchedFact{}, false
	}
	f, ok := v.facts[factKey{target, subject, predicate}]
	if !ok {
		return MatchedFact{}, false
	}
	f.Bridged = true
	return f, true
}
