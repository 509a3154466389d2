package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/report"
	"github.com/parallax-ledger/parallax/internal/scholar"
	"github.com/parallax-ledger/parallax/internal/session"
	"github.com/parallax-ledger/parallax/internal/shadow"
)

// Engine is the single entry point for counterfactual simulations.
//
// Thread-safety model: Simulate is safe to call concurrently. Each call
// forks its own session containers; the only shared resource is the base
// chain's immutable cell set. The engine never appends to the base
// chain.
type Engine struct {
	base   *ledger.Chain
	gen    session.IDGenerator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the simulation id generator.
// Tests use session.NewFixedGenerator for deterministic attestations.
func WithIDGenerator(gen session.IDGenerator) Option {
	return func(e *Engine) {
		e.gen = gen
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over a base chain.
func New(base *ledger.Chain, opts ...Option) *Engine {
	e := &Engine{
		base:   base,
		gen:    session.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate runs one counterfactual simulation at a frozen (valid time,
// system time) pair and returns an immutable result bundling the
// request, both origin-tagged query results, the delta, and the
// contamination attestation.
func (e *Engine) Simulate(ctx context.Context, req Request, overlaySpec OverlaySpec, validTime, systemTime int64) (*SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// (1) Validate; fail fast, nothing queried.
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := overlaySpec.Validate(); err != nil {
		return nil, err
	}
	if validTime < 0 || systemTime < 0 {
		return nil, newValidationError("valid_time and system_time must not be negative")
	}

	// (2) Capture the base head before anything else runs.
	headBefore := e.base.HeadID()
	lenBefore := e.base.Len()

	// (3) Base reality at the frozen time pair.
	baseResult, err := scholar.New(e.base).Resolve(req.query(validTime, systemTime))
	if err != nil {
		return nil, fmt.Errorf("base query: %w", err)
	}

	// (4) Overlay from the spec; missing base cells are skipped.
	overlay, err := e.buildOverlay(overlaySpec)
	if err != nil {
		return nil, err
	}

	// (5) Shadow reality inside a scoped session.
	shadowResult, simID, err := e.runShadowQuery(req, overlay, validTime, systemTime)
	if err != nil {
		return nil, err
	}

	// (6) Re-capture the head; (7) attest and compute the delta.
	headAfter := e.base.HeadID()
	attestation, err := report.Attest(headBefore, headAfter, simID)
	if err != nil {
		return nil, fmt.Errorf("attest: %w", err)
	}
	if attestation.ContaminationDetected || e.base.Len() != lenBefore {
		e.logger.Error("base chain mutated during simulation",
			"simulation_id", simID,
			"head_before", headBefore,
			"head_after", headAfter,
		)
		return nil, &SimulationError{
			Code:         ErrCodeContamination,
			Message:      "base chain head changed during simulation",
			SimulationID: simID,
			Details: map[string]string{
				"head_before": headBefore,
				"head_after":  headAfter,
			},
		}
	}

	delta := report.ComputeDelta(baseResult, shadowResult)

	e.logger.Debug("simulation complete",
		"simulation_id", simID,
		"before", delta.Before,
		"after", delta.After,
		"added", len(delta.Added),
		"removed", len(delta.Removed),
	)

	// (8) Immutable result.
	return &SimulationResult{
		SimulationID: simID,
		Request:      req,
		ValidTime:    validTime,
		SystemTime:   systemTime,
		Base:         report.TagOrigin(report.FromResult(baseResult), report.OriginBase),
		Shadow:       report.TagOrigin(report.FromResult(shadowResult), report.OriginShadow),
		Delta:        delta,
		Attestation:  attestation,
	}, nil
}

// runShadowQuery opens a session, queries it, and guarantees teardown on
// every exit path. Teardown errors are propagated, never suppressed,
// even when the body also failed.
func (e *Engine) runShadowQuery(req Request, overlay *shadow.Overlay, validTime, systemTime int64) (result scholar.Result, simID string, err error) {
	sess, err := session.Open(e.base, overlay, e.gen)
	if err != nil {
		return scholar.Result{}, "", &SimulationError{
			Code:    ErrCodeSessionFailed,
			Message: err.Error(),
		}
	}
	simID = sess.ID()
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	sch, err := sess.Scholar()
	if err != nil {
		return scholar.Result{}, simID, err
	}
	result, err = sch.Resolve(req.query(validTime, systemTime))
	if err != nil {
		return scholar.Result{}, simID, fmt.Errorf("shadow query: %w", err)
	}
	return result, simID, nil
}

// buildOverlay derives shadow cells from the spec. An override whose
// referenced base cell does not exist is skipped (logged at debug); an
// override referencing a cell of the wrong type is a validation error.
func (e *Engine) buildOverlay(spec OverlaySpec) (*shadow.Overlay, error) {
	overlay := shadow.NewOverlay()

	for _, f := range spec.Facts {
		base, ok := e.lookupBase(f.BaseCellID, "fact")
		if !ok {
			continue
		}
		if base.Header().Type != ledger.CellFact {
			return nil, newValidationError("fact override references %s cell %s", base.Header().Type, base.ID())
		}
		cell, err := shadow.DeriveFact(base, shadow.FactOverride{
			Object:     f.Object,
			Confidence: f.Confidence,
			ValidFrom:  f.ValidFrom,
			ValidTo:    f.ValidTo,
		})
		if err != nil {
			return nil, newValidationError("fact override for %s: %v", f.BaseCellID, err)
		}
		if err := overlay.Add(cell); err != nil {
			return nil, err
		}
	}

	for _, r := range spec.Rules {
		base, ok := e.lookupBase(r.BaseCellID, "rule")
		if !ok {
			continue
		}
		if base.Header().Type != ledger.CellRule {
			return nil, newValidationError("rule override references %s cell %s", base.Header().Type, base.ID())
		}
		cell, err := shadow.DeriveRule(base, r.Logic)
		if err != nil {
			return nil, newValidationError("rule override for %s: %v", r.BaseCellID, err)
		}
		if err := overlay.Add(cell); err != nil {
			return nil, err
		}
	}

	for _, p := range spec.Policies {
		base, ok := e.lookupBase(p.BaseCellID, "policy")
		if !ok {
			continue
		}
		if base.Header().Type != ledger.CellPolicy {
			return nil, newValidationError("policy override references %s cell %s", base.Header().Type, base.ID())
		}
		cell, err := shadow.DerivePolicy(base, p.Promoted, p.ConfidenceFloor)
		if err != nil {
			return nil, newValidationError("policy override for %s: %v", p.BaseCellID, err)
		}
		if err := overlay.Add(cell); err != nil {
			return nil, err
		}
	}

	for _, b := range spec.Bridges {
		base, ok := e.lookupBase(b.BaseCellID, "bridge")
		if !ok {
			continue
		}
		if base.Header().Type != ledger.CellBridge {
			return nil, newValidationError("bridge override references %s cell %s", base.Header().Type, base.ID())
		}
		cell, err := shadow.DeriveBridge(base, b.TargetNamespace)
		if err != nil {
			return nil, newValidationError("bridge override for %s: %v", b.BaseCellID, err)
		}
		if err := overlay.Add(cell); err != nil {
			return nil, err
		}
	}

	return overlay, nil
}

func (e *Engine) lookupBase(id, kind string) (*ledger.Cell, bool) {
	cell, ok := e.base.Lookup(id)
	if !ok {
		e.logger.Debug("skipping override: base cell not found",
			"kind", kind,
			"base_cell_id", id,
		)
		return nil, false
	}
	return cell, true
}
