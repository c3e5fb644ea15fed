package rag

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"contractlens-backend/models"
)

// TextHash fingerprints chunk content: the first 16 hex chars of the text's
// SHA-256. Equality of hashes means equality of excerpts.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// DeterministicPointID derives a stable 64-bit point ID from a chunk's
// logical key (its local citation path, or its text when no reference
// exists). Re-ingesting the same chunk overwrites instead of duplicating.
func DeterministicPointID(key string) int64 {
	sum := sha1.Sum([]byte(key))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:16], 16, 64)
	return int64(v)
}

// DedupSourcesByHash keeps the first occurrence of each source_hash,
// preserving order.
func DedupSourcesByHash(sources []models.SourceItem) []models.SourceItem {
	seen := make(map[string]bool, len(sources))
	out := make([]models.SourceItem, 0, len(sources))
	for _, s := range sources {
		if seen[s.SourceHash] {
			continue
		}
		seen[s.SourceHash] = true
		out = append(out, s)
	}
	return out
}
