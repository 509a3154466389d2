package harness

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// hexIDPattern matches full content addresses (lowercase hex SHA-256).
var hexIDPattern = regexp.MustCompile(`\b[0-9a-f]{64}\b`)

// NormalizeIDs replaces every content address with a stable placeholder
// assigned in first-occurrence order. Golden fixtures stay readable and
// hand-editable while still pinning which positions share an id.
func NormalizeIDs(data []byte) []byte {
	seen := make(map[string]string)
	n := 0
	return hexIDPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		key := string(m)
		if ph, ok := seen[key]; ok {
			return []byte(ph)
		}
		n++
		ph := fmt.Sprintf("<id:%d>", n)
		seen[key] = ph
		return []byte(ph)
	})
}

// AssertGolden compares a simulation result against the golden file
// testdata/golden/{name}.golden, with content addresses normalized.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, res *Result) error {
	t.Helper()

	encoded, err := json.MarshalIndent(res.Simulation, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, NormalizeIDs(encoded))
	return nil
}
