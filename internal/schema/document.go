package schema

// Document is a fully decoded scenario. Field presence and value ranges
// have already been checked against the CUE schema by the time a Document
// exists.
type Document struct {
	Ledger     string      `yaml:"ledger"`
	Cells      []CellDoc   `yaml:"cells"`
	Request    RequestDoc  `yaml:"request"`
	ValidTime  int64       `yaml:"valid_time"`
	SystemTime int64       `yaml:"system_time"`
	Overlay    *OverlayDoc `yaml:"overlay"`
}

// CellDoc is one cell description. Type selects which field group is
// meaningful; the CUE schema enforces the pairing.
type CellDoc struct {
	Type string `yaml:"type"`

	// fact
	Namespace  string `yaml:"namespace"`
	Subject    string `yaml:"subject"`
	Predicate  string `yaml:"predicate"`
	Object     string `yaml:"object"`
	Confidence *int64 `yaml:"confidence"`
	ValidFrom  int64  `yaml:"valid_from"`
	ValidTo    int64  `yaml:"valid_to"`

	// rule
	LogicID string `yaml:"logic_id"`
	Logic   string `yaml:"logic"`

	// policy
	Promoted        []string `yaml:"promoted"`
	ConfidenceFloor int64    `yaml:"confidence_floor"`

	// bridge
	SourceNamespace string `yaml:"source_namespace"`
	TargetNamespace string `yaml:"target_namespace"`
}

// RequestDoc mirrors engine.Request in document form.
type RequestDoc struct {
	Namespace     string   `yaml:"namespace"`
	Subject       string   `yaml:"subject"`
	Predicates    []string `yaml:"predicates"`
	MinConfidence int64    `yaml:"min_confidence"`
}

// OverlayDoc names counterfactual overrides by selector rather than by
// cell id; selectors resolve against the built chain.
type OverlayDoc struct {
	Facts    []FactOverrideDoc   `yaml:"facts"`
	Rules    []RuleOverrideDoc   `yaml:"rules"`
	Policies []PolicyOverrideDoc `yaml:"policies"`
	Bridges  []BridgeOverrideDoc `yaml:"bridges"`
}

// MatchDoc selects a base cell. Which fields matter depends on the
// override kind.
type MatchDoc struct {
	Namespace       string `yaml:"namespace"`
	Subject         string `yaml:"subject"`
	Predicate       string `yaml:"predicate"`
	LogicID         string `yaml:"logic_id"`
	SourceNamespace string `yaml:"source_namespace"`
	TargetNamespace string `yaml:"target_namespace"`
}

type FactOverrideDoc struct {
	Match      MatchDoc `yaml:"match"`
	Object     *string  `yaml:"object"`
	Confidence *int64   `yaml:"confidence"`
	ValidFrom  *int64   `yaml:"valid_from"`
	ValidTo    *int64   `yaml:"valid_to"`
}

type RuleOverrideDoc struct {
	Match MatchDoc `yaml:"match"`
	Logic string   `yaml:"logic"`
}

type PolicyOverrideDoc struct {
	Match           MatchDoc `yaml:"match"`
	Promoted        []string `yaml:"promoted"`
	ConfidenceFloor *int64   `yaml:"confidence_floor"`
}

type BridgeOverrideDoc struct {
	Match           MatchDoc `yaml:"match"`
	TargetNamespace string   `yaml:"target_namespace"`
}
