package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

// File permission constants for cache operations.
const (
	cacheDirPerm  = 0o750 // Directory permissions: rwxr-x---
	cacheFilePerm = 0o600 // File permissions: rw-------
)

// Minimum length for creating subdirectory structure in cache keys.
const minKeyLengthForSubdir = 4

// FileCache implements Cache using file system storage, one JSON file per
// scanned file.
type FileCache struct {
	baseDir string
}

// fileEntry is the on-disk format for cached results.
type fileEntry struct {
	Findings  []finding.Finding `json:"findings"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewFileCache creates a new file-based cache rooted at baseDir.
func NewFileCache(baseDir string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, cacheDirPerm); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &FileCache{
		baseDir: baseDir,
	}, nil
}

// Get retrieves cached findings.
func (f *FileCache) Get(_ context.Context, key string) ([]finding.Finding, bool) {
	path := f.keyToPath(key)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, false
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Findings, true
}

// Set stores findings with the given TTL.
func (f *FileCache) Set(_ context.Context, key string, findings []finding.Finding, ttl time.Duration) {
	path := f.keyToPath(key)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, cacheDirPerm); err != nil {
		return
	}

	entry := fileEntry{
		Findings:  findings,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	// Write atomically using temp file
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, cacheFilePerm); err != nil {
		return
	}

	_ = os.Rename(tempFile, path)
}

// Delete removes a cached result.
func (f *FileCache) Delete(_ context.Context, key string) {
	path := f.keyToPath(key)
	_ = os.Remove(path)
}

// Clear removes all cached results.
func (f *FileCache) Clear(_ context.Context) {
	_ = os.RemoveAll(f.baseDir)
	_ = os.MkdirAll(f.baseDir, cacheDirPerm)
}

// keyToPath converts a cache key to a file path.
// It creates a directory structure to avoid too many files in one directory.
func (f *FileCache) keyToPath(key string) string {
	safeKey := sanitizeKey(key)

	if len(safeKey) >= minKeyLengthForSubdir {
		subDir := filepath.Join(f.baseDir, safeKey[:2], safeKey[2:4])
		return filepath.Join(subDir, safeKey+".json")
	}

	return filepath.Join(f.baseDir, safeKey+".json")
}

// sanitizeKey makes a key safe for use as a filename.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(key)
}

// Stats returns cache statistics: total entries, expired entries, total size
// in bytes.
func (f *FileCache) Stats() (total, expired int, size int64) {
	_ = filepath.Walk(f.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".json") {
			return nil
		}

		total++
		size += info.Size()

		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil
		}

		var entry fileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			expired++
			return nil
		}

		if time.Now().After(entry.ExpiresAt) {
			expired++
		}

		return nil
	})

	return total, expired, size
}

// Cleanup removes expired entries.
func (f *FileCache) Cleanup() {
	_ = filepath.Walk(f.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".json") {
			return nil
		}

		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil
		}

		var entry fileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			_ = os.Remove(path)
			return nil
		}

		if time.Now().After(entry.ExpiresAt) {
			_ = os.Remove(path)
		}

		return nil
	})
}

// Ensure FileCache implements Cache interface.
var _ Cache = (*FileCache)(nil)
