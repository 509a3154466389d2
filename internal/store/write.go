package store

import (
	"context"
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// AppendCell inserts a cell at the given chain position.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Position conflicts still return errors, since two
// distinct cells claiming the same chain slot is never valid.
//
// The cell's payload is serialized to canonical JSON per RFC 8785 so the
// stored bytes hash back to the same content address on replay.
func (s *Store) AppendCell(ctx context.Context, position int64, cell *ledger.Cell) error {
	payloadJSON, err := marshalPayload(cell.Payload())
	if err != nil {
		return fmt.Errorf("append cell: %w", err)
	}

	proofJSON, err := marshalProof(cell.Proof())
	if err != nil {
		return fmt.Errorf("append cell: %w", err)
	}

	h := cell.Header()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cells
		(position, id, prev, cell_type, schema_version, ts, payload, proof)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		position,
		cell.ID(),
		h.Prev,
		string(h.Type),
		h.SchemaVersion,
		h.Timestamp,
		payloadJSON,
		proofJSON,
	)
	if err != nil {
		return fmt.Errorf("append cell: %w", err)
	}

	return nil
}

// SaveChain persists every cell of a chain in order.
// Idempotent: cells already present are skipped by id.
func (s *Store) SaveChain(ctx context.Context, chain *ledger.Chain) error {
	for i, cell := range chain.Cells() {
		if err := s.AppendCell(ctx, int64(i), cell); err != nil {
			return err
		}
	}
	return nil
}
