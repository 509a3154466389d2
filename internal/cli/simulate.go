package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/engine"
	"github.com/parallax-ledger/parallax/internal/schema"
)

// Error codes for CLI responses.
const (
	ErrCodeScenario      = "SCENARIO_INVALID"
	ErrCodeSimulation    = "SIMULATION_FAILED"
	ErrCodeContamination = "CONTAMINATION_DETECTED"
	ErrCodeStore         = "STORE_FAILED"
)

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a counterfactual simulation from a scenario document",
		Long: `Run a counterfactual simulation from a scenario document.

Builds the base ledger declared in the scenario, derives the shadow
overlay, runs both queries at the frozen time pair, and prints the
delta report with its attestation. The base ledger is never modified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSimulate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	built, err := loadAndBuild(path)
	if err != nil {
		formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}
	formatter.VerboseLog("built chain with %d cells, head %s", built.Chain.Len(), built.Chain.HeadID())

	eng := engine.New(built.Chain, engine.WithLogger(newLogger(opts)))
	result, err := eng.Simulate(cmd.Context(), built.Request, built.Overlay, built.ValidTime, built.SystemTime)
	if err != nil {
		if engine.IsContaminationError(err) {
			formatter.Error(ErrCodeContamination, err.Error(), nil)
			return WrapExitError(ExitFailure, "contamination detected", err)
		}
		formatter.Error(ErrCodeSimulation, err.Error(), nil)
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(summarize(result))
}

// loadAndBuild parses, validates, and realizes a scenario document.
func loadAndBuild(path string) (*schema.Built, error) {
	doc, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.Build(doc)
}

// summarize renders a simulation result as a short text report.
func summarize(r *engine.SimulationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "simulation %s\n", r.SimulationID)
	fmt.Fprintf(&b, "  request     %s/%s %v (min_confidence=%d)\n",
		r.Request.Namespace, r.Request.Subject, r.Request.Predicates, r.Request.MinConfidence)
	fmt.Fprintf(&b, "  time        valid=%d system=%d\n", r.ValidTime, r.SystemTime)
	fmt.Fprintf(&b, "  base        %s (%d facts)\n", r.Base.Outcome, len(r.Base.Facts))
	fmt.Fprintf(&b, "  shadow      %s (%d facts)\n", r.Shadow.Outcome, len(r.Shadow.Facts))
	fmt.Fprintf(&b, "  delta       verdict_changed=%v added=%d removed=%d\n",
		r.Delta.VerdictChanged, len(r.Delta.Added), len(r.Delta.Removed))
	fmt.Fprintf(&b, "  attestation head=%s contamination=%v",
		shortID(r.Attestation.HeadAfter), r.Attestation.ContaminationDetected)
	return b.String()
}

// shortID abbreviates a content address for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
