package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCell        = "parallax/cell/v1"
	DomainPolicy      = "parallax/policy/v1"
	DomainLogic       = "parallax/logic/v1"
	DomainAttestation = "parallax/attestation/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashLogic computes the content hash of a rule's logic source.
// Rule cells store this hash, not the source itself.
func HashLogic(source string) string {
	return HashWithDomain(DomainLogic, []byte(source))
}

// HashRuleSet computes the hash over a policy snapshot's promoted rule
// identifiers. The set is hashed in the given order; callers sort first
// so that equal sets always hash equally.
func HashRuleSet(ruleIDs []string) (string, error) {
	canonical, err := MarshalCanonical(StringList(ruleIDs))
	if err != nil {
		return "", fmt.Errorf("hash rule set: %w", err)
	}
	return HashWithDomain(DomainPolicy, canonical), nil
}

// computeCellID derives the content address of a cell from its header and
// payload. Volatile payload fields (confidence) are excluded via
// identityValue, so confidence-only edits do not fork identity.
func computeCellID(h Header, p Payload) (string, error) {
	obj := VObject{
		"schema_version": VInt(h.SchemaVersion),
		"cell_type":      VString(h.Type),
		"ts":             VInt(h.Timestamp),
		"prev":           VString(h.Prev),
		"payload":        p.identityValue(),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("cell id: failed to marshal: %w", err)
	}

	return HashWithDomain(DomainCell, canonical), nil
}
