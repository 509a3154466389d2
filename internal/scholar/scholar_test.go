package scholar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// appendCell stamps and appends a payload, returning the new cell.
func appendCell(t *testing.T, chain *ledger.Chain, clock *ledger.Clock, p ledger.Payload) *ledger.Cell {
	t.Helper()
	cell, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          p.CellType(),
		Timestamp:     clock.Next(),
		Prev:          chain.HeadID(),
	}, p, nil)
	require.NoError(t, err)
	require.NoError(t, chain.Append(cell))
	return cell
}

func fact(ns, subject, predicate, object string, confidence, validFrom, validTo int64) ledger.FactPayload {
	return ledger.FactPayload{
		Namespace:  ns,
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Confidence: confidence,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
	}
}

func TestResolveGrantedWhenAllPredicatesMatch(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	salary := appendCell(t, chain, clock, fact("hr", "employee:alice", "salary", "80000", 9500, 1, 0))
	dept := appendCell(t, chain, clock, fact("hr", "employee:alice", "department", "engineering", 9000, 1, 0))

	s := New(chain)
	res, err := s.Resolve(Query{
		Namespace:  "hr",
		Subject:    "employee:alice",
		Predicates: []string{"salary", "department"},
		ValidTime:  10,
		SystemTime: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeGranted, res.Outcome)
	assert.Equal(t, "80000", res.Facts["salary"].Object)
	assert.ElementsMatch(t, []string{salary.ID(), dept.ID()}, res.MatchedIDs)
	assert.True(t, slicesIsSorted(res.MatchedIDs))
}

func slicesIsSorted(ids []string) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			return false
		}
	}
	return true
}

func TestResolveSystemTimeHidesLaterRecords(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	appendCell(t, chain, clock, fact("hr", "employee:alice", "salary", "80000", 9500, 1, 0)) // ts 2
	appendCell(t, chain, clock, fact("hr", "employee:alice", "salary", "85000", 9500, 1, 0)) // ts 3

	s := New(chain)

	// System time 2: only the first record is visible.
	res, err := s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"salary"}, ValidTime: 10, SystemTime: 2})
	require.NoError(t, err)
	assert.Equal(t, "80000", res.Facts["salary"].Object)

	// System time 3: the later record supersedes it.
	res, err = s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"salary"}, ValidTime: 10, SystemTime: 3})
	require.NoError(t, err)
	assert.Equal(t, "85000", res.Facts["salary"].Object)
}

func TestResolveValidTimeInterval(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	// Valid over [5, 8) on the world axis.
	appendCell(t, chain, clock, fact("hr", "employee:alice", "badge", "active", 10000, 5, 8))

	s := New(chain)
	for _, tc := range []struct {
		validTime int64
		outcome   Outcome
	}{
		{4, OutcomeDenied},
		{5, OutcomeGranted},
		{7, OutcomeGranted},
		{8, OutcomeDenied},
	} {
		res, err := s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"badge"}, ValidTime: tc.validTime, SystemTime: 100})
		require.NoError(t, err)
		assert.Equal(t, tc.outcome, res.Outcome, "valid_time=%d", tc.validTime)
	}
}

func TestResolvePolicyConfidenceFloor(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	appendCell(t, chain, clock, fact("hr", "employee:alice", "clearance", "secret", 4000, 1, 0))

	policy, err := ledger.NewPolicyPayload("hr", []string{"rule:clearance"}, 5000)
	require.NoError(t, err)
	appendCell(t, chain, clock, policy)

	s := New(chain)
	res, err := s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"clearance"}, ValidTime: 10, SystemTime: 10})
	require.NoError(t, err)

	// Confidence 4000 sits below the policy floor of 5000.
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Empty(t, res.MatchedIDs)

	active, ok := s.ActivePolicy("hr", 10)
	require.True(t, ok)
	assert.Equal(t, int64(5000), active.ConfidenceFloor)
}

func TestResolveFollowsOneBridgeHop(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	appendCell(t, chain, clock, fact("finance", "employee:alice", "cost_center", "cc-42", 9000, 1, 0))
	appendCell(t, chain, clock, ledger.BridgePayload{SourceNamespace: "hr", TargetNamespace: "finance"})

	s := New(chain)
	res, err := s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"cost_center"}, ValidTime: 10, SystemTime: 10})
	require.NoError(t, err)

	require.Equal(t, OutcomeGranted, res.Outcome)
	assert.True(t, res.Facts["cost_center"].Bridged)
	assert.Equal(t, "cc-42", res.Facts["cost_center"].Object)
}

func TestResolvePartialOutcome(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	appendCell(t, chain, clock, fact("hr", "employee:alice", "salary", "80000", 9500, 1, 0))

	s := New(chain)
	res, err := s.Resolve(Query{Namespace: "hr", Subject: "employee:alice", Predicates: []string{"salary", "department"}, ValidTime: 10, SystemTime: 10})
	require.NoError(t, err)

	assert.Equal(t, OutcomePartial, res.Outcome)
}

func TestResolveValidatesQuery(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)
	s := New(chain)

	_, err = s.Resolve(Query{Subject: "x", Predicates: []string{"p"}})
	assert.Error(t, err)
	_, err = s.Resolve(Query{Namespace: "hr", Predicates: []string{"p"}})
	assert.Error(t, err)
	_, err = s.Resolve(Query{Namespace: "hr", Subject: "x"})
	assert.Error(t, err)
}

func TestRuleByID(t *testing.T) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	rule := appendCell(t, chain, clock, ledger.RulePayload{
		Namespace: "hr",
		LogicID:   "salary-band",
		LogicHash: ledger.HashLogic("salary within band"),
	})

	s := New(chain)
	found, ok := s.RuleByID("salary-band", 10)
	require.True(t, ok)
	assert.Equal(t, rule.ID(), found.ID())

	// Recorded at ts 2: invisible at system time 1.
	_, ok = s.RuleByID("salary-band", 1)
	assert.False(t, ok)
}
