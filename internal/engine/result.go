package engine

import (
	"encoding/json"
	"fmt"

	"github.com/parallax-ledger/parallax/internal/report"
)

// SimulationResult is the immutable outcome of one simulation. It
// round-trips losslessly through its JSON encoding; field order is fixed
// by the struct, so equal results serialize identically.
type SimulationResult struct {
	SimulationID string             `json:"simulation_id"`
	Request      Request            `json:"request"`
	ValidTime    int64              `json:"valid_time"`
	SystemTime   int64              `json:"system_time"`
	Base         report.Bundle      `json:"base"`
	Shadow       report.Bundle      `json:"shadow"`
	Delta        report.Delta       `json:"delta"`
	Attestation  report.Attestation `json:"attestation"`
}

// Encode serializes the result to JSON.
func (r *SimulationResult) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode simulation result: %w", err)
	}
	return data, nil
}

// DecodeResult parses a serialized SimulationResult.
func DecodeResult(data []byte) (*SimulationResult, error) {
	var r SimulationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode simulation result: %w", err)
	}
	return &r, nil
}
