package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainModel is the domain prefix for model fingerprints.
// Version suffix enables future algorithm migration.
const DomainModel = "apimodel/model/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content-addressed identity for a model.
// The encoding is deterministic and NFC-normalized, so the same model always
// yields the same fingerprint regardless of how its strings were composed.
func Fingerprint(m *Model) (string, error) {
	data, err := Encode(m)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainModel, norm.NFC.Bytes(data)), nil
}
