package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

func mustCell(t *testing.T, p ledger.Payload) *ledger.Cell {
	t.Helper()
	cell, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          p.CellType(),
		Timestamp:     1,
	}, p, nil)
	require.NoError(t, err)
	return cell
}

func TestBuildGroupsByTypeSpecificKey(t *testing.T) {
	factA := mustCell(t, ledger.FactPayload{Namespace: "hr", Subject: "s", Predicate: "salary", Object: "1", ValidFrom: 1})
	factB := mustCell(t, ledger.FactPayload{Namespace: "hr", Subject: "s", Predicate: "dept", Object: "x", ValidFrom: 1})
	rule := mustCell(t, ledger.RulePayload{Namespace: "hr", LogicID: "r1", LogicHash: ledger.HashLogic("l")})
	bridge := mustCell(t, ledger.BridgePayload{SourceNamespace: "hr", TargetNamespace: "finance"})

	ov, err := Build([]*ledger.Cell{factA, factB, rule, bridge})
	require.NoError(t, err)

	assert.Equal(t, 4, ov.Len())
	assert.True(t, ov.Has(Key("fact|hr|s|salary")))
	assert.True(t, ov.Has(Key("rule|r1")))
	assert.True(t, ov.Has(Key("bridge|hr|finance")))
	assert.False(t, ov.Has(Key("policy|hr")))

	got := ov.Get(Key("fact|hr|s|salary"))
	require.Len(t, got, 1)
	assert.Same(t, factA, got[0])
}

func TestOverlayRejectsGenesisCells(t *testing.T) {
	genesis := mustCell(t, ledger.GenesisPayload{Ledger: "core"})
	_, err := Build([]*ledger.Cell{genesis})
	assert.Error(t, err)
}

func TestOverlayFrozenAfterSessionStarts(t *testing.T) {
	ov := NewOverlay()
	fact := mustCell(t, ledger.FactPayload{Namespace: "hr", Subject: "s", Predicate: "p", Object: "o", ValidFrom: 1})
	require.NoError(t, ov.Add(fact))

	ov.Freeze()
	err := ov.Add(fact)
	assert.Error(t, err)
	assert.Equal(t, 1, ov.Len())
}

func TestMergeOrderIsTypeThenInsertion(t *testing.T) {
	bridge := mustCell(t, ledger.BridgePayload{SourceNamespace: "hr", TargetNamespace: "finance"})
	rule := mustCell(t, ledger.RulePayload{Namespace: "hr", LogicID: "r1", LogicHash: ledger.HashLogic("l")})
	policyPayload, err := ledger.NewPolicyPayload("hr", nil, 0)
	require.NoError(t, err)
	policy := mustCell(t, policyPayload)
	factA := mustCell(t, ledger.FactPayload{Namespace: "hr", Subject: "s", Predicate: "a", Object: "1", ValidFrom: 1})
	factB := mustCell(t, ledger.FactPayload{Namespace: "hr", Subject: "s", Predicate: "b", Object: "2", ValidFrom: 1})

	// Deliberately scrambled insertion order.
	ov, err := Build([]*ledger.Cell{bridge, factA, policy, rule, factB})
	require.NoError(t, err)

	order := ov.MergeOrder()
	require.Len(t, order, 5)
	assert.Same(t, factA, order[0])
	assert.Same(t, factB, order[1])
	assert.Same(t, rule, order[2])
	assert.Same(t, policy, order[3])
	assert.Same(t, bridge, order[4])
}
