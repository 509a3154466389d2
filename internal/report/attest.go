package report

import (
	"github.com/parallax-ledger/parallax/internal/ledger"
)

// Attestation is the cryptographic record that the base chain's head was
// unchanged across a simulation. ContaminationDetected must always be
// false; true means a core bug, not a user error.
type Attestation struct {
	HeadBefore            string `json:"head_before"`
	HeadAfter             string `json:"head_after"`
	SimulationID          string `json:"simulation_id"`
	Digest                string `json:"digest"`
	ContaminationDetected bool   `json:"contamination_detected"`
}

// Attest binds the captured heads and the simulation id with a
// domain-separated hash and evaluates the contamination flag.
func Attest(headBefore, headAfter, simulationID string) (Attestation, error) {
	canonical, err := ledger.MarshalCanonical(ledger.VObject{
		"head_before":   ledger.VString(headBefore),
		"head_after":    ledger.VString(headAfter),
		"simulation_id": ledger.VString(simulationID),
	})
	if err != nil {
		return Attestation{}, err
	}

	return Attestation{
		HeadBefore:            headBefore,
		HeadAfter:             headAfter,
		SimulationID:          simulationID,
		Digest:                ledger.HashWithDomain(ledger.DomainAttestation, canonical),
		ContaminationDetected: headBefore != headAfter,
	}, nil
}
