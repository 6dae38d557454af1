package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// ActiveFreeSpinsKey namespaces the cache-aside entry for a player's
// currently active free-spins session id, so FreeSpinsService.GetActiveSession
// doesn't round-trip to the database on every client poll of a session that
// can run dozens of spins.
func (c *Cache) ActiveFreeSpinsKey(playerID uuid.UUID) string {
	return c.setKey("activeFreeSpins:%s", playerID.String())
}

// SpinDetailKey namespaces a cache-aside entry for one settled spin's
// full record. No code path caches under this key.
func (c *Cache) SpinDetailKey(spinID uuid.UUID) string {
	return c.setKey("spinDetail:%s", spinID.String())
}

// SyncSessionKey namespaces a cache-aside entry for a cascade sync
// session's status. No code path caches under this key; the HTTP status
// endpoint in internal/api/handler/sync.go reads through SyncService.
func (c *Cache) SyncSessionKey(syncID uuid.UUID) string {
	return c.setKey("syncSession:%s", syncID.String())
}

func (c *Cache) setKey(format string, a ...any) string {
	originKey := fmt.Sprintf(format, a...)

	return fmt.Sprintf("%s:%s:%s", c.config.App.Name, c.config.App.Env, originKey)
}
