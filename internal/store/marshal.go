package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/parallax-ledger/parallax/internal/ledger"
)

// marshalPayload converts a cell payload to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalPayload(p ledger.Payload) (string, error) {
	data, err := ledger.MarshalCanonical(p.FullValue())
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses canonical JSON TEXT back into a typed payload.
func unmarshalPayload(cellType string, data string) (ledger.Payload, error) {
	v, err := ledger.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	obj, ok := v.(ledger.VObject)
	if !ok {
		return nil, fmt.Errorf("unmarshal payload: expected JSON object, got %T", v)
	}
	p, err := ledger.ParsePayload(ledger.CellType(cellType), obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

// marshalProof converts an optional proof to JSON TEXT.
// A nil proof stores as SQL NULL.
func marshalProof(p *ledger.Proof) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal proof: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalProof parses JSON TEXT back into a proof. NULL yields nil.
func unmarshalProof(data sql.NullString) (*ledger.Proof, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var p ledger.Proof
	if err := json.Unmarshal([]byte(data.String), &p); err != nil {
		return nil, fmt.Errorf("unmarshal proof: %w", err)
	}
	return &p, nil
}
