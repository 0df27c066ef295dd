package corpus

import "sync"

// Corpus is the in-memory fragment collection queries are ranked
// against. Readers always work on a snapshot, so an in-flight ingestion
// never mutates a slice a scorer is iterating.
type Corpus struct {
	mu        sync.RWMutex
	fragments []Fragment
}

// New creates an empty corpus.
func New() *Corpus {
	return &Corpus{}
}

// AddBatch appends one document's fragments in order.
func (c *Corpus) AddBatch(fragments []Fragment) {
	if len(fragments) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments = append(c.fragments, fragments...)
}

// RemoveFile drops every fragment belonging to sourceFile and returns
// how many were removed.
func (c *Corpus) RemoveFile(sourceFile string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.fragments[:0]
	removed := 0
	for _, f := range c.fragments {
		if f.SourceFile == sourceFile {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	c.fragments = kept
	return removed
}

// ReplaceAll swaps the whole corpus content, used when reloading from
// durable storage.
func (c *Corpus) ReplaceAll(fragments []Fragment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments = append([]Fragment(nil), fragments...)
}

// Clear removes every fragment.
func (c *Corpus) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments = nil
}

// Snapshot returns a copy of the current fragment list in ingestion
// order.
func (c *Corpus) Snapshot() []Fragment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Fragment(nil), c.fragments...)
}

// Len returns the current fragment count.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fragments)
}

// Stats summarizes the corpus per source file.
func (c *Corpus) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]int)
	for _, f := range c.fragments {
		stats[f.SourceFile]++
	}
	return stats
}
