package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(t CellType, ts int64, prev string) Header {
	return Header{
		SchemaVersion: CurrentSchemaVersion,
		Type:          t,
		Timestamp:     ts,
		Prev:          prev,
	}
}

func testFact() FactPayload {
	return FactPayload{
		Namespace:  "hr",
		Subject:    "employee:alice",
		Predicate:  "salary",
		Object:     "80000",
		Confidence: 9500,
		ValidFrom:  1,
	}
}

func TestNewCellDerivesIdentifier(t *testing.T) {
	cell, err := NewCell(testHeader(CellFact, 3, "prev-id"), testFact(), nil)
	require.NoError(t, err)

	assert.Len(t, cell.ID(), 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", cell.ID())
	assert.True(t, cell.VerifyIntegrity())
}

func TestNewCellIdentityExcludesConfidence(t *testing.T) {
	base := testFact()
	edited := base
	edited.Confidence = 100

	c1, err := NewCell(testHeader(CellFact, 3, ""), base, nil)
	require.NoError(t, err)
	c2, err := NewCell(testHeader(CellFact, 3, ""), edited, nil)
	require.NoError(t, err)

	// Confidence is volatile: a confidence-only edit must not fork identity.
	assert.Equal(t, c1.ID(), c2.ID())
}

func TestNewCellIdentityCoversSemanticFields(t *testing.T) {
	base := testFact()
	edited := base
	edited.Object = "90000"

	c1, err := NewCell(testHeader(CellFact, 3, ""), base, nil)
	require.NoError(t, err)
	c2, err := NewCell(testHeader(CellFact, 3, ""), edited, nil)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID(), c2.ID())
}

func TestNewCellIdentityCoversPrevLink(t *testing.T) {
	c1, err := NewCell(testHeader(CellFact, 3, "aaa"), testFact(), nil)
	require.NoError(t, err)
	c2, err := NewCell(testHeader(CellFact, 3, "bbb"), testFact(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID(), c2.ID())
}

func TestNewCellValidation(t *testing.T) {
	tests := []struct {
		name    string
		header  Header
		payload Payload
	}{
		{
			name:    "zero timestamp",
			header:  testHeader(CellFact, 0, ""),
			payload: testFact(),
		},
		{
			name:    "wrong schema version",
			header:  Header{SchemaVersion: 99, Type: CellFact, Timestamp: 1},
			payload: testFact(),
		},
		{
			name:    "type payload mismatch",
			header:  testHeader(CellRule, 1, ""),
			payload: testFact(),
		},
		{
			name:    "missing subject",
			header:  testHeader(CellFact, 1, ""),
			payload: FactPayload{Namespace: "hr", Predicate: "salary", Object: "1", ValidFrom: 1},
		},
		{
			name:    "confidence out of range",
			header:  testHeader(CellFact, 1, ""),
			payload: FactPayload{Namespace: "hr", Subject: "s", Predicate: "p", Object: "o", Confidence: 10001},
		},
		{
			name:    "inverted validity interval",
			header:  testHeader(CellFact, 1, ""),
			payload: FactPayload{Namespace: "hr", Subject: "s", Predicate: "p", Object: "o", ValidFrom: 10, ValidTo: 5},
		},
		{
			name:    "bridge within one namespace",
			header:  testHeader(CellBridge, 1, ""),
			payload: BridgePayload{SourceNamespace: "hr", TargetNamespace: "hr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCell(tt.header, tt.payload, nil)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestNewPolicyPayloadHashesSortedRuleSet(t *testing.T) {
	p1, err := NewPolicyPayload("hr", []string{"r2", "r1"}, 5000)
	require.NoError(t, err)
	p2, err := NewPolicyPayload("hr", []string{"r1", "r2"}, 5000)
	require.NoError(t, err)

	assert.Equal(t, p1.RulesHash, p2.RulesHash)
	assert.Equal(t, []string{"r1", "r2"}, p1.Promoted)
	assert.NoError(t, p1.validate())
}

func TestPolicyPayloadRejectsStaleRulesHash(t *testing.T) {
	p, err := NewPolicyPayload("hr", []string{"r1"}, 0)
	require.NoError(t, err)
	p.Promoted = []string{"r1", "r9"}

	_, err = NewCell(testHeader(CellPolicy, 1, ""), p, nil)
	assert.Error(t, err)
}

func TestSignedCellProofVerifies(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	cell, err := NewSignedCell(testHeader(CellFact, 1, ""), testFact(), priv)
	require.NoError(t, err)

	require.NotNil(t, cell.Proof())
	assert.True(t, cell.VerifyProof())
}

func TestVerifyProofRejectsForeignSignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signed, err := NewSignedCell(testHeader(CellFact, 1, ""), testFact(), priv)
	require.NoError(t, err)

	other := testFact()
	other.Object = "different"
	unsigned, err := NewCell(testHeader(CellFact, 1, ""), other, signed.Proof())
	require.NoError(t, err)

	// Proof was issued for a different identity digest.
	assert.False(t, unsigned.VerifyProof())
}

func TestParsePayloadRoundTrip(t *testing.T) {
	payloads := []Payload{
		GenesisPayload{Ledger: "core"},
		testFact(),
		RulePayload{Namespace: "hr", LogicID: "salary-band", LogicHash: HashLogic("x > 0")},
		BridgePayload{SourceNamespace: "hr", TargetNamespace: "finance"},
	}

	for _, p := range payloads {
		parsed, err := ParsePayload(p.CellType(), p.FullValue())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}
