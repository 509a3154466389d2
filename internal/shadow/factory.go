package shadow

import (
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Overrides maps payload field names (their canonical JSON names) to
// replacement values. Nested objects are overridden field-by-field by
// supplying a nested map; absent fields keep the base value.
type Overrides map[string]any

// Derive applies overrides to a copy of base's payload and returns a new
// cell with a recomputed identifier. The result has not been appended
// anywhere.
//
// Guarantee: if overrides is empty or produces byte-identical content,
// the resulting identifier equals the base identifier; otherwise it
// differs.
func Derive(base *ledger.Cell, overrides Overrides) (*ledger.Cell, error) {
	if base == nil {
		return nil, fmt.Errorf("shadow: base cell is required")
	}

	obj := base.Payload().FullValue()
	if err := applyOverrides(obj, overrides); err != nil {
		return nil, fmt.Errorf("shadow: %w", err)
	}

	payload, err := ledger.ParsePayload(base.Header().Type, obj)
	if err != nil {
		return nil, fmt.Errorf("shadow: %w", err)
	}

	return ledger.NewCell(base.Header(), payload, base.Proof())
}

func applyOverrides(obj ledger.VObject, overrides Overrides) error {
	for field, raw := range overrides {
		if _, exists := obj[field]; !exists {
			return fmt.Errorf("override targets unknown field %q", field)
		}

		if nested, ok := raw.(map[string]any); ok {
			inner, ok := obj[field].(ledger.VObject)
			if !ok {
				return fmt.Errorf("override for %q is nested but the field is scalar", field)
			}
			if err := applyOverrides(inner, nested); err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}
			continue
		}

		v, err := ledger.ToValue(raw)
		if err != nil {
			return fmt.Errorf("override for %q: %w", field, err)
		}
		obj[field] = v
	}
	return nil
}

// FactOverride names the overridable fields of a fact payload. Nil
// pointers keep the base value.
type FactOverride struct {
	Object     *string
	Confidence *int64
	ValidFrom  *int64
	ValidTo    *int64
}

// DeriveFact derives a shadow fact cell.
func DeriveFact(base *ledger.Cell, o FactOverride) (*ledger.Cell, error) {
	overrides := Overrides{}
	if o.Object != nil {
		overrides["object"] = *o.Object
	}
	if o.Confidence != nil {
		overrides["confidence"] = *o.Confidence
	}
	if o.ValidFrom != nil {
		overrides["valid_from"] = *o.ValidFrom
	}
	if o.ValidTo != nil {
		overrides["valid_to"] = *o.ValidTo
	}
	return Derive(base, overrides)
}

// DeriveRule derives a shadow rule cell from replacement logic source,
// recomputing the logic hash.
func DeriveRule(base *ledger.Cell, logicSource string) (*ledger.Cell, error) {
	return Derive(base, Overrides{"logic_hash": ledger.HashLogic(logicSource)})
}

// DerivePolicy derives a shadow policy snapshot, recomputing the
// rule-set hash over the replacement promoted set. A nil promoted slice
// keeps the base set; a nil floor keeps the base floor.
func DerivePolicy(base *ledger.Cell, promoted []string, confidenceFloor *int64) (*ledger.Cell, error) {
	if base == nil {
		return nil, fmt.Errorf("shadow: base cell is required")
	}
	p, ok := base.Payload().(ledger.PolicyPayload)
	if !ok {
		return nil, fmt.Errorf("shadow: base cell %s is not a policy snapshot", base.ID())
	}

	if promoted == nil {
		promoted = p.Promoted
	}
	floor := p.ConfidenceFloor
	if confidenceFloor != nil {
		floor = *confidenceFloor
	}

	next, err := ledger.NewPolicyPayload(p.Namespace, promoted, floor)
	if err != nil {
		return nil, fmt.Errorf("shadow: %w", err)
	}
	return Derive(base, Overrides{
		"promoted":         next.Promoted,
		"rules_hash":       next.RulesHash,
		"confidence_floor": next.ConfidenceFloor,
	})
}

// DeriveBridge derives a shadow bridge cell routing to a different
// target namespace.
func DeriveBridge(base *ledger.Cell, targetNamespace string) (*ledger.Cell, error) {
	return Derive(base, Overrides{"target_namespace": targetNamespace})
}
