package render

import (
	"fmt"
	"io"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Graph writes the chain linkage as a Graphviz digraph. Each cell is a
// node labeled with its type and abbreviated id; prev links are edges
// pointing from each cell to its predecessor.
func Graph(w io.Writer, chain *ledger.Chain) error {
	if _, err := fmt.Fprintln(w, "digraph chain {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  rankdir=RL;"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  node [shape=box, fontname=\"monospace\"];"); err != nil {
		return err
	}

	var walkErr error
	chain.Walk(func(position int, cell *ledger.Cell) bool {
		h := cell.Header()
		label := fmt.Sprintf("%s\\n%s\\nts=%d", h.Type, shortID(cell.ID()), h.Timestamp)
		if _, err := fmt.Fprintf(w, "  %q [label=%q];\n", nodeName(position), label); err != nil {
			walkErr = err
			return false
		}
		if h.Prev != "" {
			if _, err := fmt.Fprintf(w, "  %q -> %q;\n", nodeName(position), nodeName(position-1)); err != nil {
				walkErr = err
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func nodeName(position int) string {
	return fmt.Sprintf("c%d", position)
}
