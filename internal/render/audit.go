package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Audit writes a per-namespace listing of every cell in chain order.
// Genesis appears first under its ledger name; namespaced cells follow,
// grouped by namespace in lexicographic order.
func Audit(w io.Writer, chain *ledger.Chain) error {
	type entry struct {
		position int
		line     string
	}
	byNamespace := make(map[string][]entry)
	var ledgerName string

	chain.Walk(func(position int, cell *ledger.Cell) bool {
		switch p := cell.Payload().(type) {
		case ledger.GenesisPayload:
			ledgerName = p.Ledger
		case ledger.FactPayload:
			byNamespace[p.Namespace] = append(byNamespace[p.Namespace], entry{
				position: position,
				line: fmt.Sprintf("fact    %s  %s %s=%s confidence=%d valid=[%d,%s)",
					shortID(cell.ID()), p.Subject, p.Predicate, p.Object,
					p.Confidence, p.ValidFrom, validTo(p.ValidTo)),
			})
		case ledger.RulePayload:
			byNamespace[p.Namespace] = append(byNamespace[p.Namespace], entry{
				position: position,
				line: fmt.Sprintf("rule    %s  %s logic=%s",
					shortID(cell.ID()), p.LogicID, shortID(p.LogicHash)),
			})
		case ledger.PolicyPayload:
			byNamespace[p.Namespace] = append(byNamespace[p.Namespace], entry{
				position: position,
				line: fmt.Sprintf("policy  %s  promoted=[%s] floor=%d",
					shortID(cell.ID()), strings.Join(p.Promoted, ", "), p.ConfidenceFloor),
			})
		case ledger.BridgePayload:
			byNamespace[p.SourceNamespace] = append(byNamespace[p.SourceNamespace], entry{
				position: position,
				line: fmt.Sprintf("bridge  %s  -> %s",
					shortID(cell.ID()), p.TargetNamespace),
			})
		}
		return true
	})

	if _, err := fmt.Fprintf(w, "ledger %s (%d cells, head %s)\n",
		ledgerName, chain.Len(), shortID(chain.HeadID())); err != nil {
		return err
	}

	namespaces := make([]string, 0, len(byNamespace))
	for ns := range byNamespace {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		if _, err := fmt.Fprintf(w, "\nnamespace %s\n", ns); err != nil {
			return err
		}
		for _, e := range byNamespace[ns] {
			if _, err := fmt.Fprintf(w, "  [%d] %s\n", e.position, e.line); err != nil {
				return err
			}
		}
	}
	return nil
}

// shortID abbreviates a content address for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func validTo(to int64) string {
	if to == 0 {
		return "open"
	}
	return fmt.Sprintf("%d", to)
}
