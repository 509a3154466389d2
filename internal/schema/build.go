package schema

import (
	"fmt"

	"github.com/parallax-ledger/parallax/internal/engine"
	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Built is a scenario realized as runtime objects: a chain holding every
// declared cell, the request, the frozen time pair, and the overlay spec
// with selectors resolved to concrete cell ids.
type Built struct {
	Chain      *ledger.Chain
	Request    engine.Request
	Overlay    engine.OverlaySpec
	ValidTime  int64
	SystemTime int64
}

// Build constructs the scenario's chain and resolves overlay selectors.
// Cells are appended in document order; each gets the next logical
// timestamp. A selector that matches no cell is an authoring error and
// fails the build.
func Build(doc *Document) (*Built, error) {
	clock := ledger.NewClock()
	chain, err := ledger.NewChainWithGenesis(doc.Ledger, clock)
	if err != nil {
		return nil, err
	}

	// Latest cell per selector key, for overlay resolution.
	latest := make(map[string]string)

	for i, cd := range doc.Cells {
		payload, key, err := cellPayload(cd)
		if err != nil {
			return nil, fmt.Errorf("cells[%d]: %w", i, err)
		}
		cell, err := ledger.NewCell(ledger.Header{
			SchemaVersion: ledger.CurrentSchemaVersion,
			Type:          payload.CellType(),
			Timestamp:     clock.Next(),
			Prev:          chain.HeadID(),
		}, payload, nil)
		if err != nil {
			return nil, fmt.Errorf("cells[%d]: %w", i, err)
		}
		if err := chain.Append(cell); err != nil {
			return nil, fmt.Errorf("cells[%d]: %w", i, err)
		}
		latest[key] = cell.ID()
	}

	overlay, err := resolveOverlay(doc.Overlay, latest)
	if err != nil {
		return nil, err
	}

	return &Built{
		Chain: chain,
		Request: engine.Request{
			Namespace:     doc.Request.Namespace,
			Subject:       doc.Request.Subject,
			Predicates:    doc.Request.Predicates,
			MinConfidence: doc.Request.MinConfidence,
		},
		Overlay:    overlay,
		ValidTime:  doc.ValidTime,
		SystemTime: doc.SystemTime,
	}, nil
}

// cellPayload maps a cell document to its typed payload plus the selector
// key later overlays resolve against.
func cellPayload(cd CellDoc) (ledger.Payload, string, error) {
	switch cd.Type {
	case "fact":
		confidence := int64(ledger.MaxConfidence)
		if cd.Confidence != nil {
			confidence = *cd.Confidence
		}
		p := ledger.FactPayload{
			Namespace:  cd.Namespace,
			Subject:    cd.Subject,
			Predicate:  cd.Predicate,
			Object:     cd.Object,
			Confidence: confidence,
			ValidFrom:  cd.ValidFrom,
			ValidTo:    cd.ValidTo,
		}
		return p, factKey(cd.Namespace, cd.Subject, cd.Predicate), nil
	case "rule":
		p := ledger.RulePayload{
			Namespace: cd.Namespace,
			LogicID:   cd.LogicID,
			LogicHash: ledger.HashLogic(cd.Logic),
		}
		return p, ruleKey(cd.LogicID), nil
	case "policy":
		p, err := ledger.NewPolicyPayload(cd.Namespace, cd.Promoted, cd.ConfidenceFloor)
		if err != nil {
			return nil, "", err
		}
		return p, policyKey(cd.Namespace), nil
	case "bridge":
		p := ledger.BridgePayload{
			SourceNamespace: cd.SourceNamespace,
			TargetNamespace: cd.TargetNamespace,
		}
		return p, bridgeKey(cd.SourceNamespace, cd.TargetNamespace), nil
	default:
		return nil, "", fmt.Errorf("unknown cell type %q", cd.Type)
	}
}

func factKey(ns, subject, predicate string) string {
	return "fact|" + ns + "|" + subject + "|" + predicate
}
func ruleKey(logicID string) string    { return "rule|" + logicID }
func policyKey(ns string) string       { return "policy|" + ns }
func bridgeKey(src, dst string) string { return "bridge|" + src + "|" + dst }

// resolveOverlay maps selector-based overrides to id-based specs.
func resolveOverlay(od *OverlayDoc, latest map[string]string) (engine.OverlaySpec, error) {
	var spec engine.OverlaySpec
	if od == nil {
		return spec, nil
	}

	for i, f := range od.Facts {
		id, ok := latest[factKey(f.Match.Namespace, f.Match.Subject, f.Match.Predicate)]
		if !ok {
			return spec, fmt.Errorf("overlay.facts[%d]: no fact matches %s/%s/%s",
				i, f.Match.Namespace, f.Match.Subject, f.Match.Predicate)
		}
		spec.Facts = append(spec.Facts, engine.FactOverrideSpec{
			BaseCellID: id,
			Object:     f.Object,
			Confidence: f.Confidence,
			ValidFrom:  f.ValidFrom,
			ValidTo:    f.ValidTo,
		})
	}

	for i, r := range od.Rules {
		id, ok := latest[ruleKey(r.Match.LogicID)]
		if !ok {
			return spec, fmt.Errorf("overlay.rules[%d]: no rule matches %s", i, r.Match.LogicID)
		}
		spec.Rules = append(spec.Rules, engine.RuleOverrideSpec{
			BaseCellID: id,
			Logic:      r.Logic,
		})
	}

	for i, p := range od.Policies {
		id, ok := latest[policyKey(p.Match.Namespace)]
		if !ok {
			return spec, fmt.Errorf("overlay.policies[%d]: no policy matches %s", i, p.Match.Namespace)
		}
		spec.Policies = append(spec.Policies, engine.PolicyOverrideSpec{
			BaseCellID:      id,
			Promoted:        p.Promoted,
			ConfidenceFloor: p.ConfidenceFloor,
		})
	}

	for i, b := range od.Bridges {
		id, ok := latest[bridgeKey(b.Match.SourceNamespace, b.Match.TargetNamespace)]
		if !ok {
			return spec, fmt.Errorf("overlay.bridges[%d]: no bridge matches %s->%s",
				i, b.Match.SourceNamespace, b.Match.TargetNamespace)
		}
		spec.Bridges = append(spec.Bridges, engine.BridgeOverrideSpec{
			BaseCellID:      id,
			TargetNamespace: b.TargetNamespace,
		})
	}

	return spec, nil
}
