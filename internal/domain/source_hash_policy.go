package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SourceHashPolicy computes a stable content hash for a fetched feed item.
// The hash is the deduplication key: refetching the same entry yields the
// same hash and the item is skipped.
type SourceHashPolicy interface {
	Compute(title, link, description string) string
}

type sourceHashPolicy struct{}

// NewSourceHashPolicy creates the default SourceHashPolicy.
func NewSourceHashPolicy() SourceHashPolicy {
	return &sourceHashPolicy{}
}

// Compute returns the SHA-256 hash of the normalized title, link and raw
// description. Components are joined with a null byte so the boundary
// between them is unambiguous.
func (p *sourceHashPolicy) Compute(title, link, description string) string {
	content := strings.TrimSpace(title) + "\x00" + strings.TrimSpace(link) + "\x00" + strings.TrimSpace(description)
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
