package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainDocument = "charta/document/v1"
	DomainRaw      = "charta/raw/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentDigest computes the content digest of a parsed document or IR.
// Equal JSON values hash equally regardless of source format, key order,
// whitespace or number spelling.
func DocumentDigest(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("DocumentDigest: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// RawDigest hashes input bytes that could not be parsed.
func RawDigest(data []byte) string {
	return hashWithDomain(DomainRaw, data)
}

// MustDocumentDigest is like DocumentDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDocumentDigest(v any) string {
	d, err := DocumentDigest(v)
	if err != nil {
		panic(err)
	}
	return d
}
