package store

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// buildTestChain creates genesis + two fact cells, the second one signed.
func buildTestChain(t *testing.T) *ledger.Chain {
	t.Helper()
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis("core", clock)
	require.NoError(t, err)

	fact := ledger.FactPayload{
		Namespace:  "hr",
		Subject:    "emp-1",
		Predicate:  "salary",
		Object:     "80000",
		Confidence: 9500,
	}
	cell, err := ledger.NewCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellFact,
		Timestamp:     clock.Next(),
		Prev:          chain.HeadID(),
	}, fact, nil)
	require.NoError(t, err)
	require.NoError(t, chain.Append(cell))

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	fact.Predicate = "department"
	fact.Object = "engineering"
	signed, err := ledger.NewSignedCell(ledger.Header{
		SchemaVersion: ledger.CurrentSchemaVersion,
		Type:          ledger.CellFact,
		Timestamp:     clock.Next(),
		Prev:          chain.HeadID(),
	}, fact, priv)
	require.NoError(t, err)
	require.NoError(t, chain.Append(signed))

	return chain
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='cells'",
	).Scan(&name)
	require.NoError(t, err)
}

func TestSaveAndLoadChainRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	chain := buildTestChain(t)

	require.NoError(t, s.SaveChain(ctx, chain))

	loaded, err := s.LoadChain(ctx)
	require.NoError(t, err)

	require.Equal(t, chain.Len(), loaded.Len())
	assert.Equal(t, chain.HeadID(), loaded.HeadID())

	orig := chain.Cells()
	replayed := loaded.Cells()
	for i := range orig {
		assert.Equal(t, orig[i].ID(), replayed[i].ID())
		assert.Equal(t, orig[i].Header(), replayed[i].Header())
	}

	// Proof survives the round trip and still verifies.
	head, ok := loaded.Lookup(chain.HeadID())
	require.True(t, ok)
	require.NotNil(t, head.Proof())
	assert.True(t, head.VerifyProof())
}

func TestAppendCellIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	chain := buildTestChain(t)

	require.NoError(t, s.SaveChain(ctx, chain))
	require.NoError(t, s.SaveChain(ctx, chain))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM cells").Scan(&count))
	assert.Equal(t, chain.Len(), count)
}

func TestLookupCell(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	chain := buildTestChain(t)
	require.NoError(t, s.SaveChain(ctx, chain))

	cell, err := s.LookupCell(ctx, chain.HeadID())
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, chain.HeadID(), cell.ID())

	missing, err := s.LookupCell(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoadChainDetectsTampering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	chain := buildTestChain(t)
	require.NoError(t, s.SaveChain(ctx, chain))

	// Flip the stored object of the second cell. The stored id no longer
	// matches the recomputed content address.
	_, err := s.db.Exec(
		`UPDATE cells SET payload = REPLACE(payload, '80000', '90000') WHERE position = 1`,
	)
	require.NoError(t, err)

	_, err = s.LoadChain(ctx)
	require.Error(t, err)
	assert.True(t, ledger.IsIntegrityError(err))
}
