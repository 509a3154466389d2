package harness

import (
	"fmt"
	"testing"
)

// Assertion type constants.
const (
	AssertBaseOutcome    = "base_outcome"
	AssertShadowOutcome  = "shadow_outcome"
	AssertVerdictChanged = "verdict_changed"
	AssertFactsAdded     = "facts_added"
	AssertFactsRemoved   = "facts_removed"
	AssertContamination  = "contamination"
)

// Assertion validates one aspect of a simulation result.
type Assertion struct {
	// Type selects the check:
	// - "base_outcome": base bundle outcome equals Outcome
	// - "shadow_outcome": shadow bundle outcome equals Outcome
	// - "verdict_changed": delta verdict-changed flag equals Value
	// - "facts_added": delta added-list length equals Count
	// - "facts_removed": delta removed-list length equals Count
	// - "contamination": attestation contamination flag equals Value
	Type string `yaml:"type"`

	// Outcome is the expected categorical outcome (outcome checks).
	Outcome string `yaml:"outcome,omitempty"`

	// Value is the expected flag (boolean checks).
	Value bool `yaml:"value"`

	// Count is the expected list length (count checks).
	Count int `yaml:"count"`
}

// Check evaluates one assertion against a result.
func Check(res *Result, a Assertion) error {
	sim := res.Simulation
	switch a.Type {
	case AssertBaseOutcome:
		if sim.Base.Outcome != a.Outcome {
			return fmt.Errorf("base outcome = %q, want %q", sim.Base.Outcome, a.Outcome)
		}
	case AssertShadowOutcome:
		if sim.Shadow.Outcome != a.Outcome {
			return fmt.Errorf("shadow outcome = %q, want %q", sim.Shadow.Outcome, a.Outcome)
		}
	case AssertVerdictChanged:
		if sim.Delta.VerdictChanged != a.Value {
			return fmt.Errorf("verdict_changed = %v, want %v", sim.Delta.VerdictChanged, a.Value)
		}
	case AssertFactsAdded:
		if len(sim.Delta.Added) != a.Count {
			return fmt.Errorf("len(added) = %d, want %d", len(sim.Delta.Added), a.Count)
		}
	case AssertFactsRemoved:
		if len(sim.Delta.Removed) != a.Count {
			return fmt.Errorf("len(removed) = %d, want %d", len(sim.Delta.Removed), a.Count)
		}
	case AssertContamination:
		if sim.Attestation.ContaminationDetected != a.Value {
			return fmt.Errorf("contamination_detected = %v, want %v", sim.Attestation.ContaminationDetected, a.Value)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// CheckAll evaluates every assertion, collecting failures.
func CheckAll(res *Result) []error {
	var errs []error
	for i, a := range res.Scenario.Assertions {
		if err := Check(res, a); err != nil {
			errs = append(errs, fmt.Errorf("assertion %d (%s): %w", i, a.Type, err))
		}
	}
	return errs
}

// AssertAll fails the test for every unmet assertion.
func AssertAll(t *testing.T, res *Result) {
	t.Helper()
	for _, err := range CheckAll(res) {
		t.Error(err)
	}
}
