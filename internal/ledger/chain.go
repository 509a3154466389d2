package ledger

import (
	"fmt"
	"sync"
)

// Chain is an ordered, append-only sequence of cells with a head pointer
// and an identifier index for O(1) lookup.
//
// INVARIANTS:
//   - index and ordering are always consistent with the cell sequence
//   - Append is the only mutating operation
//   - a failed Append leaves the chain untouched
//
// Thread-safety model: Append is serialized by an internal mutex
// (single-writer invariant). Reads take the same mutex briefly to copy
// out references; the cells themselves are immutable and safe to alias
// across forks without synchronization.
type Chain struct {
	mu    sync.Mutex
	cells []*Cell
	index map[string]*Cell
	head  *Cell
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{
		index: make(map[string]*Cell),
	}
}

// NewChainWithGenesis creates a chain anchored by a genesis cell stamped
// from the given clock.
func NewChainWithGenesis(ledgerName string, clock *Clock) (*Chain, error) {
	chain := NewChain()
	genesis, err := NewCell(Header{
		SchemaVersion: CurrentSchemaVersion,
		Type:          CellGenesis,
		Timestamp:     clock.Next(),
		Prev:          "",
	}, GenesisPayload{Ledger: ledgerName}, nil)
	if err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := chain.Append(genesis); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	return chain, nil
}

// Append adds a cell to the chain. It fails with an integrity error if
// the cell's declared predecessor link does not equal the current head,
// or if an identical identifier already exists. On failure the chain is
// unchanged.
func (c *Chain) Append(cell *Cell) error {
	if cell == nil {
		return &ValidationError{Field: "cell", Message: "cell is required"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expectedPrev := ""
	if c.head != nil {
		expectedPrev = c.head.ID()
	}
	if cell.Header().Prev != expectedPrev {
		return &IntegrityError{
			Code:    ErrCodeHeadMismatch,
			Message: fmt.Sprintf("declared prev %q does not match head %q", cell.Header().Prev, expectedPrev),
			CellID:  cell.ID(),
		}
	}
	if _, exists := c.index[cell.ID()]; exists {
		return &IntegrityError{
			Code:    ErrCodeDuplicateCell,
			Message: "identifier already exists in chain",
			CellID:  cell.ID(),
		}
	}

	c.cells = append(c.cells, cell)
	c.index[cell.ID()] = cell
	c.head = cell
	return nil
}

// Lookup returns the cell with the given identifier, O(1).
func (c *Chain) Lookup(id string) (*Cell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cell, ok := c.index[id]
	return cell, ok
}

// Head returns the most recently appended cell, or nil for an empty chain.
func (c *Chain) Head() *Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// HeadID returns the head's identifier, or "" for an empty chain.
func (c *Chain) HeadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.head == nil {
		return ""
	}
	return c.head.ID()
}

// Len returns the number of cells in the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cells)
}

// Cells returns the cell sequence in append order. The slice is a copy;
// the cells are shared immutable values.
func (c *Chain) Cells() []*Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// Walk visits cells in append order until fn returns false.
// Used by renderers and other chain-traversal consumers.
func (c *Chain) Walk(fn func(position int, cell *Cell) bool) {
	for i, cell := range c.Cells() {
		if !fn(i, cell) {
			return
		}
	}
}

// Fork returns a new chain that shares this chain's cells by reference
// but owns independent ordering and index containers. Appends to the fork
// can never reach this chain's containers - isolation is structural, not
// a runtime check.
func (c *Chain) Fork() *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	fork := &Chain{
		cells: make([]*Cell, len(c.cells)),
		index: make(map[string]*Cell, len(c.index)),
		head:  c.head,
	}
	copy(fork.cells, c.cells)
	for id, cell := range c.index {
		fork.index[id] = cell
	}
	return fork
}

// VerifyLinks checks the whole chain: every identifier matches its
// content hash and every prev link matches the preceding cell. Returns
// the first violation as an integrity error.
func (c *Chain) VerifyLinks() error {
	prev := ""
	for i, cell := range c.Cells() {
		if !cell.VerifyIntegrity() {
			return &IntegrityError{
				Code:    ErrCodeIDMismatch,
				Message: fmt.Sprintf("cell at position %d fails content verification", i),
				CellID:  cell.ID(),
			}
		}
		if cell.Header().Prev != prev {
			return &IntegrityError{
				Code:    ErrCodeHeadMismatch,
				Message: fmt.Sprintf("cell at position %d declares prev %q, expected %q", i, cell.Header().Prev, prev),
				CellID:  cell.ID(),
			}
		}
		prev = cell.ID()
	}
	return nil
}
