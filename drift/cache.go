package drift

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/katalvlaran/cordrift/collapse"
)

// Key identifies one profile: a bead (OnBeads) or a cycle index of the
// track at Root.
type Key struct {
	Root    string
	ID      int
	OnBeads bool
}

// String quotes Root so that distinct keys never share a string.
func (k Key) String() string { return fmt.Sprintf("%q/%t/%d", k.Root, k.OnBeads, k.ID) }

// Cache memoizes profiles. Do calls fn at most once per key and hands the
// single result to every requester of that key.
type Cache interface {
	Do(key Key, fn func() (*collapse.Profile, error)) (*collapse.Profile, error)
}

// MemoCache is an in-memory Cache. Failed computations are not stored, so
// a later Do retries them. The zero value is not usable; use NewMemoCache.
type MemoCache struct {
	mu    sync.Mutex
	done  map[Key]*collapse.Profile
	group singleflight.Group
}

// NewMemoCache returns an empty MemoCache.
func NewMemoCache() *MemoCache {
	return &MemoCache{done: make(map[Key]*collapse.Profile)}
}

func (c *MemoCache) lookup(key Key) (*collapse.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.done[key]

	return p, ok
}

// Do implements Cache.
func (c *MemoCache) Do(key Key, fn func() (*collapse.Profile, error)) (*collapse.Profile, error) {
	if p, ok := c.lookup(key); ok {
		return p, nil
	}
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if p, ok := c.lookup(key); ok {
			return p, nil
		}
		p, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.done[key] = p
		c.mu.Unlock()

		return p, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*collapse.Profile), nil
}

// Len returns the number of stored profiles.
func (c *MemoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.done)
}

// Forget drops key.
func (c *MemoCache) Forget(key Key) {
	c.mu.Lock()
	delete(c.done, key)
	c.mu.Unlock()
	c.group.Forget(key.String())
}
