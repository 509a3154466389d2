package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args, returning stdout and the
// command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", "testdata/salary.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateAcceptsGoodScenario(t *testing.T) {
	out, err := execute(t, "validate", "testdata/salary.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "valid (4 cells)")
}

func TestValidateRejectsBrokenScenario(t *testing.T) {
	out, err := execute(t, "validate", "testdata/broken.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [SCENARIO_INVALID]")
}

func TestValidateJSONEnvelope(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "testdata/salary.yaml")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestSimulateTextSummary(t *testing.T) {
	out, err := execute(t, "simulate", "testdata/salary.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "base        granted")
	assert.Contains(t, out, "shadow      granted")
	assert.Contains(t, out, "verdict_changed=false added=1 removed=1")
	assert.Contains(t, out, "contamination=false")
}

func TestSimulateJSONResult(t *testing.T) {
	out, err := execute(t, "--format", "json", "simulate", "testdata/salary.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			SimulationID string `json:"simulation_id"`
			Attestation  struct {
				ContaminationDetected bool `json:"contamination_detected"`
			} `json:"attestation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.SimulationID)
	assert.False(t, resp.Data.Attestation.ContaminationDetected)
}

func TestSimulateMissingFile(t *testing.T) {
	_, err := execute(t, "simulate", "testdata/absent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAuditListsNamespaces(t *testing.T) {
	out, err := execute(t, "audit", "testdata/salary.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger core (4 cells")
	assert.Contains(t, out, "namespace hr")
	assert.Contains(t, out, "salary=80000")
}

func TestGraphEmitsDOT(t *testing.T) {
	out, err := execute(t, "graph", "testdata/salary.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph chain {"))
	assert.Contains(t, out, `"c3" -> "c2";`)
}

func TestSaveThenVerify(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := execute(t, "save", "testdata/salary.yaml", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "saved 4 cells")

	out, err = execute(t, "verify", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "4 cells verified")
}

func TestAppendInitializesAndGrows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := execute(t, "append", "--db", dbPath,
		"--namespace", "hr", "--subject", "emp-1",
		"--predicate", "salary", "--object", "80000",
		"--confidence", "9500")
	require.NoError(t, err)
	// genesis + fact
	assert.Contains(t, out, "2 cells")

	out, err = execute(t, "append", "--db", dbPath,
		"--namespace", "hr", "--subject", "emp-1",
		"--predicate", "salary", "--object", "90000")
	require.NoError(t, err)
	assert.Contains(t, out, "3 cells")

	out, err = execute(t, "verify", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 cells verified")
}

func TestShowFindsAppendedCell(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := execute(t, "--format", "json", "append", "--db", dbPath,
		"--namespace", "hr", "--subject", "emp-1",
		"--predicate", "salary", "--object", "80000")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			CellID string `json:"cell_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.CellID)

	out, err = execute(t, "show", resp.Data.CellID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "type    fact")
	assert.Contains(t, out, `"object":"80000"`)
}

func TestShowMissingCell(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	_, err := execute(t, "show", strings.Repeat("0", 64), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "verify", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 cells verified")
}
