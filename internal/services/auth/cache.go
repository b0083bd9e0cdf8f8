package auth

import (
	"sync"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// IdentityCache maps session credentials to the identity they resolved to.
// Entries are added lazily and never evicted.
type IdentityCache struct {
	mu      sync.RWMutex
	entries map[string]model.IdentityID
}

// NewIdentityCache creates an empty cache
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{
		entries: make(map[string]model.IdentityID),
	}
}

// Get returns the cached identity for a credential
func (c *IdentityCache) Get(credential string) (model.IdentityID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[credential]
	return id, ok
}

// Put stores the identity for a credential, overwriting any previous entry
func (c *IdentityCache) Put(credential string, id model.IdentityID) {
	c.mu.Lock()
	c.entries[credential] = id
	c.mu.Unlock()
}

// Len returns the number of cached credentials
func (c *IdentityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
