package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

func factCell(t *testing.T) *ledger.Cell {
	t.Helper()
	cell, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellFact,
		Timestamp:     3,
		Prev:          "prev-id",
	}, ledger.FactPayload{
		Namespace:  "hr",
		Subject:    "employee:alice",
		Predicate:  "salary",
		Object:     "80000",
		Confidence: 9500,
		ValidFrom:  1,
	}, nil)
	require.NoError(t, err)
	return cell
}

func TestDeriveEmptyOverridesKeepsIdentity(t *testing.T) {
	base := factCell(t)

	same, err := Derive(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base.ID(), same.ID())

	// A no-op override (same value) also keeps identity.
	same, err = Derive(base, Overrides{"object": "80000"})
	require.NoError(t, err)
	assert.Equal(t, base.ID(), same.ID())
}

func TestDeriveContentChangeForksIdentity(t *testing.T) {
	base := factCell(t)

	shadowCell, err := Derive(base, Overrides{"object": "90000"})
	require.NoError(t, err)

	assert.NotEqual(t, base.ID(), shadowCell.ID())
	payload := shadowCell.Payload().(ledger.FactPayload)
	assert.Equal(t, "90000", payload.Object)
	// Everything else carries over.
	assert.Equal(t, "employee:alice", payload.Subject)
	assert.Equal(t, int64(9500), payload.Confidence)
	assert.Equal(t, base.Header(), shadowCell.Header())
}

func TestDeriveConfidenceOnlyOverrideKeepsIdentity(t *testing.T) {
	base := factCell(t)

	shadowCell, err := Derive(base, Overrides{"confidence": int64(100)})
	require.NoError(t, err)

	// Confidence is volatile and excluded from identity.
	assert.Equal(t, base.ID(), shadowCell.ID())
	assert.Equal(t, int64(100), shadowCell.Payload().(ledger.FactPayload).Confidence)
}

func TestDeriveRejectsUnknownField(t *testing.T) {
	base := factCell(t)
	_, err := Derive(base, Overrides{"no_such_field": "x"})
	assert.Error(t, err)
}

func TestDeriveFactHelper(t *testing.T) {
	base := factCell(t)
	object := "90000"
	validTo := int64(50)

	shadowCell, err := DeriveFact(base, FactOverride{Object: &object, ValidTo: &validTo})
	require.NoError(t, err)

	payload := shadowCell.Payload().(ledger.FactPayload)
	assert.Equal(t, "90000", payload.Object)
	assert.Equal(t, int64(50), payload.ValidTo)
	assert.NotEqual(t, base.ID(), shadowCell.ID())
}

func TestDeriveRuleRecomputesLogicHash(t *testing.T) {
	base, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellRule,
		Timestamp:     2,
	}, ledger.RulePayload{
		Namespace: "hr",
		LogicID:   "salary-band",
		LogicHash: ledger.HashLogic("old logic"),
	}, nil)
	require.NoError(t, err)

	shadowCell, err := DeriveRule(base, "new logic")
	require.NoError(t, err)

	payload := shadowCell.Payload().(ledger.RulePayload)
	assert.Equal(t, ledger.HashLogic("new logic"), payload.LogicHash)
	assert.Equal(t, "salary-band", payload.LogicID)
	assert.NotEqual(t, base.ID(), shadowCell.ID())
}

func TestDerivePolicyRecomputesRuleSetHash(t *testing.T) {
	payload, err := ledger.NewPolicyPayload("hr", []string{"r1"}, 5000)
	require.NoError(t, err)
	base, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellPolicy,
		Timestamp:     2,
	}, payload, nil)
	require.NoError(t, err)

	shadowCell, err := DerivePolicy(base, []string{"r1", "r2"}, nil)
	require.NoError(t, err)

	p := shadowCell.Payload().(ledger.PolicyPayload)
	expected, err := ledger.NewPolicyPayload("hr", []string{"r1", "r2"}, 5000)
	require.NoError(t, err)
	assert.Equal(t, expected.RulesHash, p.RulesHash)
	assert.Equal(t, int64(5000), p.ConfidenceFloor)

	// Floor-only variant keeps the promoted set.
	floor := int64(2000)
	shadowCell, err = DerivePolicy(base, nil, &floor)
	require.NoError(t, err)
	p = shadowCell.Payload().(ledger.PolicyPayload)
	assert.Equal(t, []string{"r1"}, p.Promoted)
	assert.Equal(t, int64(2000), p.ConfidenceFloor)
}

func TestDeriveBridge(t *testing.T) {
	base, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellBridge,
		Timestamp:     2,
	}, ledger.BridgePayload{SourceNamespace: "hr", TargetNamespace: "finance"}, nil)
	require.NoError(t, err)

	shadowCell, err := DeriveBridge(base, "legal")
	require.NoError(t, err)
	assert.Equal(t, "legal", shadowCell.Payload().(ledger.BridgePayload).TargetNamespace)
	assert.NotEqual(t, base.ID(), shadowCell.ID())
}
