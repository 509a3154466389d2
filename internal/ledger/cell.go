package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"slices"
)

// CurrentSchemaVersion is the cell header schema version written by this
// build. Readers accept only this version.
const CurrentSchemaVersion = 1

// CellType tags the semantic payload shape of a cell.
type CellType string

const (
	CellGenesis CellType = "genesis"
	CellFact    CellType = "fact"
	CellRule    CellType = "rule"
	CellPolicy  CellType = "policy"
	CellBridge  CellType = "bridge"
)

// ValidCellTypes defines the allowed cell types.
var ValidCellTypes = map[CellType]bool{
	CellGenesis: true,
	CellFact:    true,
	CellRule:    true,
	CellPolicy:  true,
	CellBridge:  true,
}

// MaxConfidence is the upper bound for fact confidence (basis points).
const MaxConfidence = 10000

// Header carries the non-payload semantic fields of a cell.
type Header struct {
	SchemaVersion int64    `json:"schema_version"`
	Type          CellType `json:"cell_type"`
	Timestamp     int64    `json:"ts"`   // logical record time
	Prev          string   `json:"prev"` // identifier of the predecessor cell, "" for genesis
}

// Payload is the sealed interface over cell payload shapes.
type Payload interface {
	// CellType returns the type tag this payload belongs under.
	CellType() CellType

	// identityValue returns the canonical object used for identity
	// hashing. Volatile fields (confidence) are excluded here.
	identityValue() VObject

	// FullValue returns the canonical object including volatile fields,
	// used for storage and result rendering.
	FullValue() VObject

	// validate checks payload schema constraints.
	validate() error
}

// GenesisPayload anchors a chain. Ledger names the chain's owner.
type GenesisPayload struct {
	Ledger string `json:"ledger"`
}

func (p GenesisPayload) CellType() CellType { return CellGenesis }

func (p GenesisPayload) identityValue() VObject {
	return VObject{"ledger": VString(p.Ledger)}
}

func (p GenesisPayload) FullValue() VObject { return p.identityValue() }

func (p GenesisPayload) validate() error {
	if p.Ledger == "" {
		return &ValidationError{Field: "ledger", Message: "genesis ledger name is required"}
	}
	return nil
}

// FactPayload states that subject has predicate=object within a namespace,
// valid over [ValidFrom, ValidTo) on the valid-time axis. ValidTo == 0
// means open-ended. Confidence is basis points (0..10000) and is excluded
// from identity so confidence-only edits do not fork identity.
type FactPayload struct {
	Namespace  string `json:"namespace"`
	Subject    string `json:"subject"`
	Predicate  string `json:"predicate"`
	Object     string `json:"object"`
	Confidence int64  `json:"confidence"`
	ValidFrom  int64  `json:"valid_from"`
	ValidTo    int64  `json:"valid_to"`
}

func (p FactPayload) CellType() CellType { return CellFact }

func (p FactPayload) identityValue() VObject {
	return VObject{
		"namespace":  VString(p.Namespace),
		"subject":    VString(p.Subject),
		"predicate":  VString(p.Predicate),
		"object":     VString(p.Object),
		"valid_from": VInt(p.ValidFrom),
		"valid_to":   VInt(p.ValidTo),
	}
}

func (p FactPayload) FullValue() VObject {
	obj := p.identityValue()
	obj["confidence"] = VInt(p.Confidence)
	return obj
}

func (p FactPayload) validate() error {
	switch {
	case p.Namespace == "":
		return &ValidationError{Field: "namespace", Message: "fact namespace is required"}
	case p.Subject == "":
		return &ValidationError{Field: "subject", Message: "fact subject is required"}
	case p.Predicate == "":
		return &ValidationError{Field: "predicate", Message: "fact predicate is required"}
	case p.Confidence < 0 || p.Confidence > MaxConfidence:
		return &ValidationError{Field: "confidence", Message: fmt.Sprintf("confidence %d outside [0, %d]", p.Confidence, MaxConfidence)}
	case p.ValidFrom < 0:
		return &ValidationError{Field: "valid_from", Message: "valid_from must not be negative"}
	case p.ValidTo != 0 && p.ValidTo <= p.ValidFrom:
		return &ValidationError{Field: "valid_to", Message: "valid_to must be 0 (open) or after valid_from"}
	}
	return nil
}

// RulePayload registers decision logic by identifier. The ledger stores a
// hash of the logic source, not the source itself.
type RulePayload struct {
	Namespace string `json:"namespace"`
	LogicID   string `json:"logic_id"`
	LogicHash string `json:"logic_hash"`
}

func (p RulePayload) CellType() CellType { return CellRule }

func (p RulePayload) identityValue() VObject {
	return VObject{
		"namespace":  VString(p.Namespace),
		"logic_id":   VString(p.LogicID),
		"logic_hash": VString(p.LogicHash),
	}
}

func (p RulePayload) FullValue() VObject { return p.identityValue() }

func (p RulePayload) validate() error {
	switch {
	case p.Namespace == "":
		return &ValidationError{Field: "namespace", Message: "rule namespace is required"}
	case p.LogicID == "":
		return &ValidationError{Field: "logic_id", Message: "rule logic_id is required"}
	case p.LogicHash == "":
		return &ValidationError{Field: "logic_hash", Message: "rule logic_hash is required"}
	}
	return nil
}

// PolicyPayload snapshots the promoted rule set for a namespace plus the
// confidence floor facts must meet to count toward authorization.
type PolicyPayload struct {
	Namespace       string   `json:"namespace"`
	Promoted        []string `json:"promoted"`
	RulesHash       string   `json:"rules_hash"`
	ConfidenceFloor int64    `json:"confidence_floor"`
}

func (p PolicyPayload) CellType() CellType { return CellPolicy }

func (p PolicyPayload) identityValue() VObject {
	return VObject{
		"namespace":        VString(p.Namespace),
		"promoted":         StringList(p.Promoted),
		"rules_hash":       VString(p.RulesHash),
		"confidence_floor": VInt(p.ConfidenceFloor),
	}
}

func (p PolicyPayload) FullValue() VObject { return p.identityValue() }

func (p PolicyPayload) validate() error {
	switch {
	case p.Namespace == "":
		return &ValidationError{Field: "namespace", Message: "policy namespace is required"}
	case p.RulesHash == "":
		return &ValidationError{Field: "rules_hash", Message: "policy rules_hash is required"}
	case p.ConfidenceFloor < 0 || p.ConfidenceFloor > MaxConfidence:
		return &ValidationError{Field: "confidence_floor", Message: fmt.Sprintf("confidence_floor %d outside [0, %d]", p.ConfidenceFloor, MaxConfidence)}
	}
	expected, err := HashRuleSet(sortedCopy(p.Promoted))
	if err != nil {
		return &ValidationError{Field: "promoted", Message: err.Error()}
	}
	if expected != p.RulesHash {
		return &ValidationError{Field: "rules_hash", Message: "rules_hash does not match promoted rule set"}
	}
	return nil
}

// NewPolicyPayload builds a policy snapshot with its rule-set hash
// computed over the sorted promoted identifiers.
func NewPolicyPayload(namespace string, promoted []string, confidenceFloor int64) (PolicyPayload, error) {
	sorted := sortedCopy(promoted)
	rulesHash, err := HashRuleSet(sorted)
	if err != nil {
		return PolicyPayload{}, err
	}
	return PolicyPayload{
		Namespace:       namespace,
		Promoted:        sorted,
		RulesHash:       rulesHash,
		ConfidenceFloor: confidenceFloor,
	}, nil
}

// BridgePayload routes unresolved predicates from a source namespace to a
// target namespace.
type BridgePayload struct {
	SourceNamespace string `json:"source_namespace"`
	TargetNamespace string `json:"target_namespace"`
}

func (p BridgePayload) CellType() CellType { return CellBridge }

func (p BridgePayload) identityValue() VObject {
	return VObject{
		"source_namespace": VString(p.SourceNamespace),
		"target_namespace": VString(p.TargetNamespace),
	}
}

func (p BridgePayload) FullValue() VObject { return p.identityValue() }

func (p BridgePayload) validate() error {
	switch {
	case p.SourceNamespace == "":
		return &ValidationError{Field: "source_namespace", Message: "bridge source_namespace is required"}
	case p.TargetNamespace == "":
		return &ValidationError{Field: "target_namespace", Message: "bridge target_namespace is required"}
	case p.SourceNamespace == p.TargetNamespace:
		return &ValidationError{Field: "target_namespace", Message: "bridge must cross namespaces"}
	}
	return nil
}

// Proof is an optional authorization proof attached at creation.
// The signature covers the cell's identity digest.
type Proof struct {
	Signer    string `json:"signer"`    // hex-encoded ed25519 public key
	Signature string `json:"signature"` // hex-encoded signature over the cell id
}

// Cell is an immutable, content-addressed ledger record. The identifier is
// recomputed from content at construction and is never assignable; all
// fields are reached through accessors that return copies.
type Cell struct {
	header  Header
	payload Payload
	proof   *Proof
	id      string
}

// NewCell constructs a cell, validating header and payload schema and
// monotonic-time constraints, and deriving the content address.
func NewCell(header Header, payload Payload, proof *Proof) (*Cell, error) {
	if payload == nil {
		return nil, &ValidationError{Field: "payload", Message: "payload is required"}
	}
	if header.SchemaVersion != CurrentSchemaVersion {
		return nil, &ValidationError{Field: "schema_version", Message: fmt.Sprintf("unsupported schema version %d", header.SchemaVersion)}
	}
	if !ValidCellTypes[header.Type] {
		return nil, &ValidationError{Field: "cell_type", Message: fmt.Sprintf("unknown cell type %q", header.Type)}
	}
	if header.Type != payload.CellType() {
		return nil, &ValidationError{Field: "cell_type", Message: fmt.Sprintf("header type %q does not match payload type %q", header.Type, payload.CellType())}
	}
	if header.Timestamp <= 0 {
		return nil, &ValidationError{Field: "ts", Message: "timestamp must be a positive logical time"}
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}

	id, err := computeCellID(header, payload)
	if err != nil {
		return nil, err
	}

	var proofCopy *Proof
	if proof != nil {
		p := *proof
		proofCopy = &p
	}

	return &Cell{
		header:  header,
		payload: payload,
		proof:   proofCopy,
		id:      id,
	}, nil
}

// NewSignedCell constructs a cell and attaches an ed25519 proof over its
// identity digest.
func NewSignedCell(header Header, payload Payload, priv ed25519.PrivateKey) (*Cell, error) {
	cell, err := NewCell(header, payload, nil)
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(priv, []byte(cell.id))
	pub := priv.Public().(ed25519.PublicKey)
	cell.proof = &Proof{
		Signer:    hex.EncodeToString(pub),
		Signature: hex.EncodeToString(sig),
	}
	return cell, nil
}

// ID returns the content address: a lowercase hex SHA-256 digest.
func (c *Cell) ID() string { return c.id }

// Header returns a copy of the cell header.
func (c *Cell) Header() Header { return c.header }

// Payload returns the cell payload. Payloads are value types, so the
// returned interface cannot be used to mutate the cell.
func (c *Cell) Payload() Payload { return c.payload }

// Proof returns a copy of the attached proof, or nil when unsigned.
func (c *Cell) Proof() *Proof {
	if c.proof == nil {
		return nil
	}
	p := *c.proof
	return &p
}

// VerifyIntegrity recomputes the content hash and compares it to the
// stored identifier.
func (c *Cell) VerifyIntegrity() bool {
	id, err := computeCellID(c.header, c.payload)
	if err != nil {
		return false
	}
	return id == c.id
}

// VerifyProof checks the attached ed25519 proof against the identity
// digest. Returns false for unsigned cells.
func (c *Cell) VerifyProof() bool {
	if c.proof == nil {
		return false
	}
	pub, err := hex.DecodeString(c.proof.Signer)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(c.proof.Signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(c.id), sig)
}

// ParsePayload decodes a payload object of the given cell type, as read
// back from storage or a wire document.
func ParsePayload(t CellType, obj VObject) (Payload, error) {
	switch t {
	case CellGenesis:
		return GenesisPayload{Ledger: obj.str("ledger")}, nil
	case CellFact:
		return FactPayload{
			Namespace:  obj.str("namespace"),
			Subject:    obj.str("subject"),
			Predicate:  obj.str("predicate"),
			Object:     obj.str("object"),
			Confidence: obj.num("confidence"),
			ValidFrom:  obj.num("valid_from"),
			ValidTo:    obj.num("valid_to"),
		}, nil
	case CellRule:
		return RulePayload{
			Namespace: obj.str("namespace"),
			LogicID:   obj.str("logic_id"),
			LogicHash: obj.str("logic_hash"),
		}, nil
	case CellPolicy:
		return PolicyPayload{
			Namespace:       obj.str("namespace"),
			Promoted:        obj.strs("promoted"),
			RulesHash:       obj.str("rules_hash"),
			ConfidenceFloor: obj.num("confidence_floor"),
		}, nil
	case CellBridge:
		return BridgePayload{
			SourceNamespace: obj.str("source_namespace"),
			TargetNamespace: obj.str("target_namespace"),
		}, nil
	default:
		return nil, &ValidationError{Field: "cell_type", Message: fmt.Sprintf("unknown cell type %q", t)}
	}
}

func sortedCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	slices.Sort(out)
	return out
}
