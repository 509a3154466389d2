package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.cue
var scenarioCUE string

// LoadError is a scenario validation failure with source position when
// the CUE evaluator can provide one.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

// scenarioSchema compiles the embedded schema once. Compilation cannot
// fail at runtime unless the embedded file is broken, so the error is
// cached alongside the value.
func scenarioSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(scenarioCUE, cue.Filename("scenario.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		schemaValue = v.LookupPath(cue.ParsePath("#Scenario"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Scenario: %w", err)
		}
	})
	return schemaValue, schemaErr
}

// Load parses and validates a YAML scenario document. The name is used
// only for error reporting.
func Load(name string, data []byte) (*Document, error) {
	sv, err := scenarioSchema()
	if err != nil {
		return nil, err
	}

	// Decode generically first so the CUE evaluator sees the document
	// exactly as written, before any Go zero values appear.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw == nil {
		return nil, &LoadError{Path: name, Message: "scenario document is empty"}
	}

	// Encode with the schema's own context; values from separate CUE
	// runtimes cannot be unified.
	docVal := sv.Context().Encode(raw)
	if err := docVal.Err(); err != nil {
		return nil, loadError(name, err)
	}

	checked := sv.Unify(docVal)
	if err := checked.Err(); err != nil {
		return nil, loadError(name, err)
	}
	if err := checked.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, loadError(name, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: name, Message: fmt.Sprintf("decode scenario: %v", err)}
	}
	return &doc, nil
}

// LoadFile reads and validates a scenario document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return Load(path, data)
}

// loadError extracts position info from CUE errors.
func loadError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: name, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Path: name, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
