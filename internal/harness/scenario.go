package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/parallax-ledger/parallax/internal/schema"
)

// Scenario is one end-to-end simulation case: a scenario document plus
// the assertions its result must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the validated scenario: ledger cells, request, time
	// pair, and overlay.
	Document *schema.Document `yaml:"-"`

	// Assertions validate the simulation result.
	Assertions []Assertion `yaml:"assertions"`

	// SimulationID is an optional fixed id for deterministic golden
	// comparison. Empty means "sim-000001".
	SimulationID string `yaml:"simulation_id,omitempty"`
}

// scenarioFile is the raw YAML layout. The document subtree is kept as a
// node so schema validation sees it exactly as written.
type scenarioFile struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description"`
	Scenario     yaml.Node   `yaml:"scenario"`
	Assertions   []Assertion `yaml:"assertions"`
	SimulationID string      `yaml:"simulation_id"`
}

// LoadScenario parses a scenario file, validating the embedded document
// against the scenario schema.
func LoadScenario(name string, data []byte) (*Scenario, error) {
	var sf scenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if sf.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", name)
	}
	if sf.Scenario.IsZero() {
		return nil, fmt.Errorf("scenario %s: scenario document is required", name)
	}

	docBytes, err := yaml.Marshal(&sf.Scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	doc, err := schema.Load(name, docBytes)
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Name:         sf.Name,
		Description:  sf.Description,
		Document:     doc,
		Assertions:   sf.Assertions,
		SimulationID: sf.SimulationID,
	}, nil
}

// LoadScenarioFile reads a scenario from disk.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadScenario(path, data)
}
