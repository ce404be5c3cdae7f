package main

import (
	"sync"
	"time"

	"github.com/Comcast/glushkov/storage"
)

type CacheEntry struct {
	Record  *storage.Record
	Expires time.Time
}

func (e *CacheEntry) Get(now time.Time) *storage.Record {
	if now.After(e.Expires) {
		return nil
	}
	return e.Record
}

// AutomatonCache holds restored records so that a match doesn't have
// to go to Storage.
type AutomatonCache struct {
	sync.Mutex

	// Only expires entries when they are fetched or when the
	// cache is full.
	TTL  time.Duration
	Size int

	Entries map[string]*CacheEntry

	// now is a hook for tests.
	now func() time.Time
}

func NewAutomatonCache(ttl time.Duration, size int) *AutomatonCache {
	return &AutomatonCache{
		TTL:     ttl,
		Size:    size,
		Entries: make(map[string]*CacheEntry, size),
		now:     time.Now,
	}
}

func (c *AutomatonCache) Put(name string, r *storage.Record) {
	c.Lock()
	defer c.Unlock()

	now := c.now()
	if 0 < c.Size && c.Size <= len(c.Entries) {
		c.sweep(now)
	}
	if 0 < c.Size && c.Size <= len(c.Entries) {
		// Still full.  Drop something.
		for k := range c.Entries {
			delete(c.Entries, k)
			break
		}
	}

	c.Entries[name] = &CacheEntry{
		Record:  r,
		Expires: now.Add(c.TTL),
	}
}

func (c *AutomatonCache) Rem(name string) {
	c.Lock()
	delete(c.Entries, name)
	c.Unlock()
}

func (c *AutomatonCache) Get(name string) *storage.Record {
	c.Lock()
	defer c.Unlock()

	e, have := c.Entries[name]
	if !have {
		return nil
	}
	if r := e.Get(c.now()); r != nil {
		return r
	}
	delete(c.Entries, name)
	return nil
}

// Len reports the number of entries, including expired ones that
// haven't been swept.
func (c *AutomatonCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.Entries)
}

func (c *AutomatonCache) sweep(now time.Time) {
	for name, e := range c.Entries {
		if e.Get(now) == nil {
			delete(c.Entries, name)
		}
	}
}
