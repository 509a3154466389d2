package harness

import (
	"context"
	"fmt"

	"github.com/parallax-ledger/parallax/internal/engine"
	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/schema"
	"github.com/parallax-ledger/parallax/internal/testutil"
)

// Result is the outcome of one scenario run.
type Result struct {
	Scenario   *Scenario
	BaseChain  *ledger.Chain
	Simulation *engine.SimulationResult
}

// Run builds the scenario's chain, executes the simulation, and returns
// the result. The simulation id comes from the scenario so repeated runs
// are byte-identical.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	built, err := schema.Build(s.Document)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	eng := engine.New(built.Chain,
		engine.WithIDGenerator(testutil.NewStaticIDGenerator(s.SimulationID)),
	)
	sim, err := eng.Simulate(ctx, built.Request, built.Overlay, built.ValidTime, built.SystemTime)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	return &Result{
		Scenario:   s,
		BaseChain:  built.Chain,
		Simulation: sim,
	}, nil
}
