package shadow

import (
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Key identifies the observation point a shadow cell overrides. It is the
// same identity tuple the query engine resolves by: namespace + subject +
// predicate for facts, logic id for rules, namespace pair for bridges,
// namespace for policy snapshots.
type Key string

// KeyFor computes the overlay key of a cell.
func KeyFor(cell *ledger.Cell) (Key, error) {
	switch p := cell.Payload().(type) {
	case ledger.FactPayload:
		return Key(fmt.Sprintf("fact|%s|%s|%s", p.Namespace, p.Subject, p.Predicate)), nil
	case ledger.RulePayload:
		return Key(fmt.Sprintf("rule|%s", p.LogicID)), nil
	case ledger.PolicyPayload:
		return Key(fmt.Sprintf("policy|%s", p.Namespace)), nil
	case ledger.BridgePayload:
		return Key(fmt.Sprintf("bridge|%s|%s", p.SourceNamespace, p.TargetNamespace)), nil
	default:
		return "", fmt.Errorf("shadow: cell type %q cannot participate in an overlay", cell.Header().Type)
	}
}

// Overlay is the precedence index consulted during one simulation. It is
// built before a session opens, consumed read-only during the session,
// and discarded with it.
type Overlay struct {
	entries map[Key][]*ledger.Cell
	order   []*ledger.Cell // insertion order, for deterministic merging
	frozen  bool
}

// NewOverlay creates an empty overlay context.
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[Key][]*ledger.Cell)}
}

// Build groups a flat list of shadow cells by their type-specific keys.
func Build(cells []*ledger.Cell) (*Overlay, error) {
	ov := NewOverlay()
	for _, cell := range cells {
		if err := ov.Add(cell); err != nil {
			return nil, err
		}
	}
	return ov, nil
}

// Add indexes one shadow cell. Fails once a session has started
// consuming the overlay.
func (o *Overlay) Add(cell *ledger.Cell) error {
	if o.frozen {
		return fmt.Errorf("shadow: overlay is frozen, no mutation permitted after a session starts")
	}
	key, err := KeyFor(cell)
	if err != nil {
		return err
	}
	o.entries[key] = append(o.entries[key], cell)
	o.order = append(o.order, cell)
	return nil
}

// Get returns the shadow cells indexed at a key, O(1).
func (o *Overlay) Get(key Key) []*ledger.Cell {
	return o.entries[key]
}

// Has reports whether any shadow cell is indexed at a key, O(1).
func (o *Overlay) Has(key Key) bool {
	return len(o.entries[key]) > 0
}

// Len returns the number of indexed shadow cells.
func (o *Overlay) Len() int {
	return len(o.order)
}

// Freeze marks the overlay read-only. Called by the session that
// consumes it.
func (o *Overlay) Freeze() {
	o.frozen = true
}

// MergeOrder returns the shadow cells in the fixed order a session
// appends them to the forked chain: fact cells, then rule cells, then
// policy snapshots, then bridge cells; insertion order within each type.
func (o *Overlay) MergeOrder() []*ledger.Cell {
	out := make([]*ledger.Cell, 0, len(o.order))
	for _, t := range []ledger.CellType{ledger.CellFact, ledger.CellRule, ledger.CellPolicy, ledger.CellBridge} {
		for _, cell := range o.order {
			if cell.Header().Type == t {
				out = append(out, cell)
			}
		}
	}
	return out
}
