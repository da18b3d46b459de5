package process

import (
	"sync"
	"time"
)

// DefaultCommandTTL is how long a cached command line stays valid.
const DefaultCommandTTL = 5 * time.Second

type cachedCommand struct {
	command string
	jiffies uint64
	expires time.Time
}

// CommandCache remembers resolved command lines per pid between scans.
// An entry is served only while it is younger than the TTL and the process
// has not accumulated fewer jiffies than when it was stored; a drop in
// jiffies means the pid was reused by a new process.
type CommandCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[int]cachedCommand
}

// NewCommandCache returns an empty cache. ttl <= 0 selects DefaultCommandTTL.
func NewCommandCache(ttl time.Duration) *CommandCache {
	if ttl <= 0 {
		ttl = DefaultCommandTTL
	}
	return &CommandCache{ttl: ttl, entries: make(map[int]cachedCommand)}
}

// Get returns the cached command for pid if it is still valid at now.
func (c *CommandCache) Get(pid int, now time.Time, jiffies uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[pid]
	if !ok {
		return "", false
	}
	if !now.Before(e.expires) || jiffies < e.jiffies {
		delete(c.entries, pid)
		return "", false
	}
	return e.command, true
}

// Put stores command for pid.
func (c *CommandCache) Put(pid int, command string, now time.Time, jiffies uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pid] = cachedCommand{command: command, jiffies: jiffies, expires: now.Add(c.ttl)}
}

// Prune drops expired entries and returns how many remain.
func (c *CommandCache) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for pid, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, pid)
		}
	}
	return len(c.entries)
}

// Len returns the number of entries, expired or not.
func (c *CommandCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
