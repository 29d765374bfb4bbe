// Package cache memoizes base64 payloads of report resources (sub-report
// templates, images) on disk so a long running process does not re-read and
// re-encode the same files for every report.
//
// Artifacts are keyed by an xxhash of the absolute source path and are never
// invalidated on their own: callers that change a file in place must Remove
// it or Clear the cache.
package cache

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/logger"
)

const (
	artifactKind   = "rreport.resource/v1"
	artifactSuffix = ".json"
	tempPattern    = ".artifact-*.tmp"
)

// artifact is the on-disk record for one cached resource.
type artifact struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Checksum  string    `json:"checksum"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *artifact) intact(key string) bool {
	return a.Key == key && a.Kind == artifactKind && a.Checksum == checksum(a.Payload)
}

// Cache is a filesystem-backed resource cache with an in-process memory tier.
type Cache struct {
	dir string
	mem *memoryTier
	log logger.Logger
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first write.
func New(dir string, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Discard()
	}
	return &Cache{
		dir: dir,
		mem: newMemoryTier(),
		log: logger.Component(log, "resource_cache"),
	}
}

// FromConfig creates a cache in the configured temp directory.
func FromConfig(cfg *config.Config, log logger.Logger) *Cache {
	return New(cfg.CacheDirectory(), log)
}

// Dir returns the artifact directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the stable cache key for a source path.
func (c *Cache) Key(sourcePath string) (string, error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", errs.Cache("resolve path %s: %w", sourcePath, err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(abs)), nil
}

// Resolve returns the base64 payload of sourcePath. The source file is read
// only when neither the memory tier nor the artifact directory has it.
func (c *Cache) Resolve(sourcePath string) (string, error) {
	key, err := c.Key(sourcePath)
	if err != nil {
		return "", err
	}
	if a, ok := c.mem.get(key); ok {
		return a.Payload, nil
	}
	if a, ok := c.load(key); ok {
		c.mem.put(a)
		c.log.Debugf("artifact hit for %s", sourcePath)
		return a.Payload, nil
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", errs.Cache("read resource %s: %w", sourcePath, err)
	}
	abs, _ := filepath.Abs(sourcePath)
	payload := base64.StdEncoding.EncodeToString(data)
	a := &artifact{
		Key:       key,
		Kind:      artifactKind,
		Source:    abs,
		Checksum:  checksum(payload),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store(a); err != nil {
		return "", err
	}
	c.mem.put(a)
	c.log.WithField("key", key).Debugf("cached %s (%d bytes)", sourcePath, len(data))
	return payload, nil
}

// Remove deletes the artifact for sourcePath. Removing an absent entry is a
// no-op.
func (c *Cache) Remove(sourcePath string) error {
	key, err := c.Key(sourcePath)
	if err != nil {
		return err
	}
	c.mem.delete(key)
	if err := os.Remove(c.artifactPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Cache("remove artifact %s: %w", key, err)
	}
	return nil
}

// Clear deletes every artifact in the cache directory. A directory that does
// not exist yet holds nothing to clear.
func (c *Cache) Clear() error {
	c.mem.reset()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errs.Cache("scan cache directory %s: %w", c.dir, err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isArtifactFile(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errs.Cache("remove artifact %s: %w", entry.Name(), err)
		}
		removed++
	}
	c.log.Infof("cleared %d artifacts from %s", removed, c.dir)
	return nil
}

// Stats describes the current cache contents.
type Stats struct {
	Loaded    int
	Artifacts int
}

// GetStats counts loaded entries and artifacts on disk.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{Loaded: c.mem.len()}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return nil, errs.Cache("scan cache directory %s: %w", c.dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), artifactSuffix) {
			stats.Artifacts++
		}
	}
	return stats, nil
}

func (c *Cache) artifactPath(key string) string {
	return filepath.Join(c.dir, key+artifactSuffix)
}

// load reads an artifact from disk. Anything unreadable, undecodable or
// failing its checksum counts as a miss and is rewritten by the caller.
func (c *Cache) load(key string) (*artifact, bool) {
	data, err := os.ReadFile(c.artifactPath(key))
	if err != nil {
		return nil, false
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		c.log.Warnf("discarding undecodable artifact %s: %v", key, err)
		return nil, false
	}
	if !a.intact(key) {
		c.log.Warnf("discarding damaged artifact %s", key)
		return nil, false
	}
	return &a, true
}

// store writes the artifact through a temp file and a rename so concurrent
// readers only ever see a complete file; the last writer wins.
func (c *Cache) store(a *artifact) error {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return errs.Cache("create cache directory %s: %w", c.dir, err)
	}
	data, err := json.Marshal(a)
	if err != nil {
		return errs.Cache("encode artifact %s: %w", a.Key, err)
	}
	tmp, err := os.CreateTemp(c.dir, tempPattern)
	if err != nil {
		return errs.Cache("create artifact %s: %w", a.Key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Cache("write artifact %s: %w", a.Key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Cache("write artifact %s: %w", a.Key, err)
	}
	if err := os.Rename(tmpName, c.artifactPath(a.Key)); err != nil {
		os.Remove(tmpName)
		return errs.Cache("commit artifact %s: %w", a.Key, err)
	}
	return nil
}

func isArtifactFile(name string) bool {
	if strings.HasSuffix(name, artifactSuffix) {
		return true
	}
	// Leftovers of interrupted writes.
	return strings.HasPrefix(name, ".artifact-") && strings.HasSuffix(name, ".tmp")
}

func checksum(payload string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(payload))
}
