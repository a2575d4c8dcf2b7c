package dedup

import (
	"strings"
	"sync"
)

// Fingerprint derives the duplicate-detection key for an item text: the first
// checkChars characters, whitespace runs collapsed to single spaces,
// lowercased. Two items with the same fingerprint are treated as the same
// news regardless of source or link.
func Fingerprint(text string, checkChars int) string {
	runes := []rune(text)
	if checkChars > 0 && len(runes) > checkChars {
		runes = runes[:checkChars]
	}
	head := strings.Join(strings.Fields(string(runes)), " ")
	return strings.ToLower(head)
}

// Cache is a fixed-capacity set of fingerprints of already-posted items with
// FIFO eviction. Membership tests and inserts are O(1). The cache is shared
// by every collector goroutine and guards itself with a mutex.
type Cache struct {
	mu         sync.Mutex
	maxSize    int
	checkChars int
	order      []string       // most recent first
	members    map[string]int // occurrence count, mirrors order
}

func NewCache(maxSize, checkChars int) *Cache {
	if maxSize <= 0 {
		maxSize = 50
	}
	if checkChars <= 0 {
		checkChars = 50
	}
	return &Cache{
		maxSize:    maxSize,
		checkChars: checkChars,
		members:    make(map[string]int, maxSize),
	}
}

// IsDuplicate reports whether the text's fingerprint is already in the cache.
// No mutation.
func (c *Cache) IsDuplicate(text string) bool {
	fp := Fingerprint(text, c.checkChars)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members[fp] > 0
}

// MarkPosted records the text's fingerprint at the most-recent position,
// evicting the oldest entry when the capacity is exceeded. The insert is
// unconditional: callers must check IsDuplicate first, or a repeated
// fingerprint will occupy additional slots and shrink the effective capacity.
func (c *Cache) MarkPosted(text string) {
	fp := Fingerprint(text, c.checkChars)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(fp)
}

// Seed bulk-loads fingerprints recovered from history, given newest first as
// the post log returns them. Already-present fingerprints are skipped;
// anything beyond capacity is evicted oldest-first.
func (c *Cache) Seed(fingerprints []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Insert oldest to newest so recency in the cache matches the history.
	for i := len(fingerprints) - 1; i >= 0; i-- {
		fp := fingerprints[i]
		if c.members[fp] > 0 {
			continue
		}
		c.insert(fp)
	}
}

func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.members = make(map[string]int, c.maxSize)
}

// insert must be called with the mutex held. Eviction decrements the
// occurrence count so that a fingerprint occupying several slots stays a
// member until its last copy leaves the sequence.
func (c *Cache) insert(fp string) {
	c.order = append([]string{fp}, c.order...)
	c.members[fp]++

	if len(c.order) > c.maxSize {
		oldest := c.order[len(c.order)-1]
		c.order = c.order[:len(c.order)-1]
		if c.members[oldest] <= 1 {
			delete(c.members, oldest)
		} else {
			c.members[oldest]--
		}
	}
}
