package services

import (
	"sync"

	"github.com/emre/assigntrack/internal/app/models"
)

// PendingRoleCache remembers the role a user asked for at signup until a
// live session exists to persist it. One slot per user: a second signup
// attempt before resolution overwrites the first. The cache is process-local
// and ephemeral; a restart loses pending roles, and the account stays
// role-less until support intervenes.
type PendingRoleCache struct {
	mu    sync.RWMutex
	roles map[int64]models.Role
}

// NewPendingRoleCache creates an empty cache
func NewPendingRoleCache() *PendingRoleCache {
	return &PendingRoleCache{roles: make(map[int64]models.Role)}
}

// Set records the requested role for a user
func (c *PendingRoleCache) Set(userID int64, role models.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
}

// Get returns the pending role for a user, if any
func (c *PendingRoleCache) Get(userID int64) (models.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	role, ok := c.roles[userID]
	return role, ok
}

// Delete removes the pending entry for a user
func (c *PendingRoleCache) Delete(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, userID)
}

// Len reports how many users have an unresolved role
func (c *PendingRoleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.roles)
}
