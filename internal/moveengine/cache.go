package moveengine

import (
	"os"
	"sync"
	"time"
)

// Fingerprint is the change-detection signature of a source file.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// FingerprintOf reads the fingerprint from file info.
func FingerprintOf(info os.FileInfo) Fingerprint {
	return Fingerprint{Size: info.Size(), ModTime: info.ModTime()}
}

// Equal reports whether both size and modification instant match.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}

// ChangeCache maps a slash-separated relative path to the fingerprint seen
// when the file was last copied. Only the source side is recorded, so a
// destination file that changed on its own is not noticed.
type ChangeCache struct {
	mu      sync.RWMutex
	entries map[string]Fingerprint
}

// NewChangeCache creates an empty cache.
func NewChangeCache() *ChangeCache {
	return &ChangeCache{entries: make(map[string]Fingerprint)}
}

// Clear forgets every entry.
func (c *ChangeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Fingerprint)
}

// Get returns the fingerprint recorded for key.
func (c *ChangeCache) Get(key string) (Fingerprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fp, ok := c.entries[key]

	return fp, ok
}

// Has reports whether key has a recorded fingerprint.
func (c *ChangeCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of recorded entries.
func (c *ChangeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Set records fp for key, replacing any previous value.
func (c *ChangeCache) Set(key string, fp Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = fp
}

// Unchanged reports whether key was recorded with exactly fp.
func (c *ChangeCache) Unchanged(key string, fp Fingerprint) bool {
	cached, ok := c.Get(key)
	return ok && cached.Equal(fp)
}
