package engine

import (
	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/scholar"
)

// Request is a canonicalized simulation request. An external validator is
// expected to have checked field presence and types already; Validate
// re-checks the constraints the core cannot live without.
type Request struct {
	Namespace     string   `json:"namespace"`
	Subject       string   `json:"subject"`
	Predicates    []string `json:"predicates"`
	MinConfidence int64    `json:"min_confidence"`
}

// Validate fails fast on schema violations.
func (r Request) Validate() error {
	switch {
	case r.Namespace == "":
		return newValidationError("request namespace is required")
	case r.Subject == "":
		return newValidationError("request subject is required")
	case len(r.Predicates) == 0:
		return newValidationError("request requires at least one predicate")
	case r.MinConfidence < 0 || r.MinConfidence > ledger.MaxConfidence:
		return newValidationError("min_confidence %d outside [0, %d]", r.MinConfidence, ledger.MaxConfidence)
	}
	for _, p := range r.Predicates {
		if p == "" {
			return newValidationError("request predicates must be non-empty")
		}
	}
	return nil
}

// query freezes the request at a (valid time, system time) pair.
func (r Request) query(validTime, systemTime int64) scholar.Query {
	return scholar.Query{
		Namespace:     r.Namespace,
		Subject:       r.Subject,
		Predicates:    r.Predicates,
		MinConfidence: r.MinConfidence,
		ValidTime:     validTime,
		SystemTime:    systemTime,
	}
}

// FactOverrideSpec overrides fields of a base fact cell named by id.
// Nil pointers keep the base value.
type FactOverrideSpec struct {
	BaseCellID string  `json:"base_cell_id"`
	Object     *string `json:"object,omitempty"`
	Confidence *int64  `json:"confidence,omitempty"`
	ValidFrom  *int64  `json:"valid_from,omitempty"`
	ValidTo    *int64  `json:"valid_to,omitempty"`
}

// RuleOverrideSpec swaps a rule's logic; the logic hash is recomputed
// from the replacement source.
type RuleOverrideSpec struct {
	BaseCellID string `json:"base_cell_id"`
	Logic      string `json:"logic"`
}

// PolicyOverrideSpec replaces a policy snapshot's promoted set and/or
// confidence floor; the rule-set hash is recomputed.
type PolicyOverrideSpec struct {
	BaseCellID      string   `json:"base_cell_id"`
	Promoted        []string `json:"promoted,omitempty"`
	ConfidenceFloor *int64   `json:"confidence_floor,omitempty"`
}

// BridgeOverrideSpec reroutes a bridge to a different target namespace.
type BridgeOverrideSpec struct {
	BaseCellID      string `json:"base_cell_id"`
	TargetNamespace string `json:"target_namespace"`
}

// OverlaySpec names the counterfactual overrides of one simulation.
type OverlaySpec struct {
	Facts    []FactOverrideSpec   `json:"facts,omitempty"`
	Rules    []RuleOverrideSpec   `json:"rules,omitempty"`
	Policies []PolicyOverrideSpec `json:"policies,omitempty"`
	Bridges  []BridgeOverrideSpec `json:"bridges,omitempty"`
}

// Validate fails fast on structurally broken override specs. Missing
// base cells are NOT a validation failure - they degrade gracefully at
// overlay build time.
func (o OverlaySpec) Validate() error {
	for _, f := range o.Facts {
		if f.BaseCellID == "" {
			return newValidationError("fact override requires base_cell_id")
		}
	}
	for _, r := range o.Rules {
		if r.BaseCellID == "" {
			return newValidationError("rule override requires base_cell_id")
		}
		if r.Logic == "" {
			return newValidationError("rule override requires replacement logic")
		}
	}
	for _, p := range o.Policies {
		if p.BaseCellID == "" {
			return newValidationError("policy override requires base_cell_id")
		}
	}
	for _, b := range o.Bridges {
		if b.BaseCellID == "" {
			return newValidationError("bridge override requires base_cell_id")
		}
		if b.TargetNamespace == "" {
			return newValidationError("bridge override requires target_namespace")
		}
	}
	return nil
}
