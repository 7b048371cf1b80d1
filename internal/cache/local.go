package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalCache implements Cache using a local file plus an in-memory copy.
// Suitable for single-instance deployments. An empty filePath keeps the
// snapshot in memory only.
type LocalCache struct {
	mu       sync.RWMutex
	filePath string
	mem      *Snapshot
}

// NewLocalCache creates a new local cache backed by filePath.
func NewLocalCache(filePath string) *LocalCache {
	return &LocalCache{filePath: filePath}
}

// Get returns the in-memory snapshot, falling back to the file.
func (c *LocalCache) Get(_ context.Context) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.mem != nil {
		return c.mem, nil
	}
	if c.filePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no snapshot yet, not an error
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return &snap, nil
}

// Set stores the snapshot in memory and, when configured, on disk.
// The file write is atomic (temp file + rename).
func (c *LocalCache) Set(_ context.Context, snap *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem = snap
	if c.filePath == "" {
		return nil
	}

	if dir := filepath.Dir(c.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpFile := c.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmpFile, c.filePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}

// Invalidate drops the in-memory copy and removes the cache file.
func (c *LocalCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem = nil
	if c.filePath == "" {
		return nil
	}
	if err := os.Remove(c.filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Close is a no-op for local cache.
func (c *LocalCache) Close() error {
	return nil
}
