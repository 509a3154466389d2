package session

import (
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/scholar"
	"github.com/parallax-ledger/parallax/internal/shadow"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnopened is the zero state; no fork exists yet.
	StateUnopened State = iota
	// StateOpen means the shadow chain is forked, merged, and queryable.
	StateOpen
	// StateClosed means the fork and its query engine have been dropped.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is a transient, scoped simulation context: a shadow chain that
// shares the base chain's cells by reference but owns independent
// ordering/index containers, plus a query engine bound to that shadow
// chain.
type Session struct {
	id      string
	state   State
	fork    *ledger.Chain
	scholar *scholar.Scholar
}

// Open forks the base chain, appends every overlay cell to the fork in
// the overlay's fixed merge order (facts, rules, policy snapshots,
// bridges), and binds a fresh query engine only after the merge
// completes, so every query observes the shadow cells.
//
// Each overlay cell is re-linked to the fork's head as it is appended;
// its identifier is recomputed from the new content, and any base proof
// is dropped (a proof signs an identity digest, and a hypothetical cell
// has no valid one). The base chain is read once, via Fork, and never
// written.
func Open(base *ledger.Chain, overlay *shadow.Overlay, gen IDGenerator) (*Session, error) {
	if base == nil {
		return nil, fmt.Errorf("session: base chain is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("session: id generator is required")
	}

	fork := base.Fork()

	if overlay != nil {
		overlay.Freeze()
		for _, cell := range overlay.MergeOrder() {
			linked, err := relink(cell, fork.HeadID())
			if err != nil {
				return nil, fmt.Errorf("session: merge overlay cell: %w", err)
			}
			if err := fork.Append(linked); err != nil {
				return nil, fmt.Errorf("session: merge overlay cell: %w", err)
			}
		}
	}

	return &Session{
		id:      gen.Generate(),
		state:   StateOpen,
		fork:    fork,
		scholar: scholar.New(fork),
	}, nil
}

// relink copies a cell onto a new predecessor. Identity is recomputed by
// construction; the record timestamp is preserved so the cell stays
// visible at the same frozen system time as its base.
func relink(cell *ledger.Cell, prev string) (*ledger.Cell, error) {
	header := cell.Header()
	header.Prev = prev
	return ledger.NewCell(header, cell.Payload(), nil)
}

// ID returns the simulation identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Scholar returns the query engine bound to the shadow chain.
// Returns an error once the session is closed.
func (s *Session) Scholar() (*scholar.Scholar, error) {
	if s.state != StateOpen {
		return nil, fmt.Errorf("session %s: scholar requested while %s", s.id, s.state)
	}
	return s.scholar, nil
}

// ShadowLen returns the shadow chain's length while the session is open.
func (s *Session) ShadowLen() int {
	if s.state != StateOpen {
		return 0
	}
	return s.fork.Len()
}

// Close drops the shadow chain and its query engine. It runs exactly
// once; subsequent calls are no-ops. Close never touches the base chain.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.fork = nil
	s.scholar = nil
	return nil
}
