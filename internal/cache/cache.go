// Package cache stores per-file scan results so unchanged files are not
// re-analyzed. Keys combine the rule set fingerprint with a content hash, so
// editing a rule invalidates every cached result.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

// Cache provides the scan result caching interface.
type Cache interface {
	Get(ctx context.Context, key string) ([]finding.Finding, bool)
	Set(ctx context.Context, key string, findings []finding.Finding, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// Key derives the cache key for one file under one rule set.
func Key(fingerprint string, content []byte) string {
	hash := sha256.Sum256(content)
	return fingerprint + ":" + hex.EncodeToString(hash[:16])
}

// Entry represents a cached result with expiration.
type Entry struct {
	Findings  []finding.Finding
	ExpiresAt time.Time
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}
