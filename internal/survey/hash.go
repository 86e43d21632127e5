package survey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainDefinition separates definition fingerprints from other hashes.
const DomainDefinition = "surveysync/definition/v1"

// Fingerprint computes a content hash of a definition.
// Format: SHA256(domain + 0x00 + canonical JSON).
//
// Two definitions that differ only in key order or whitespace inside
// settings blobs share a fingerprint.
func Fingerprint(def *Definition) (string, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	canonical, err := CanonicalizeRaw(raw)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainDefinition))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
