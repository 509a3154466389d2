package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// LoadChain replays every stored cell into a fresh in-memory chain.
//
// Replay re-verifies the full integrity contract: each content address is
// recomputed from stored bytes, and each cell's prev link must name the id
// of the cell before it. Any divergence aborts the load with a
// REPLAY_DIVERGENCE error rather than returning a partially trusted chain.
func (s *Store) LoadChain(ctx context.Context) (*ledger.Chain, error) {
	cells, err := s.LoadCells(ctx)
	if err != nil {
		return nil, err
	}

	chain := ledger.NewChain()
	for _, cell := range cells {
		if err := chain.Append(cell); err != nil {
			var ie *ledger.IntegrityError
			if errors.As(err, &ie) {
				return nil, &ledger.IntegrityError{
					Code:    ledger.ErrCodeReplayDivergence,
					Message: fmt.Sprintf("replay aborted: %s", ie.Message),
					CellID:  cell.ID(),
				}
			}
			return nil, fmt.Errorf("replay: %w", err)
		}
	}

	if err := chain.VerifyLinks(); err != nil {
		return nil, err
	}

	return chain, nil
}
