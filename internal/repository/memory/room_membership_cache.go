package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// RoomMembershipCache remembers which users belong to which rooms so socket
// joins do not hit the database on every frame.
type RoomMembershipCache struct {
	cache *cache.Cache
}

func NewRoomMembershipCache(ttl time.Duration) *RoomMembershipCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RoomMembershipCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func membershipKey(roomId, userId uuid.UUID) string {
	return roomId.String() + ":" + userId.String()
}

func (c *RoomMembershipCache) Remember(roomId, userId uuid.UUID, member bool) {
	c.cache.Set(membershipKey(roomId, userId), member, cache.DefaultExpiration)
}

func (c *RoomMembershipCache) Lookup(roomId, userId uuid.UUID) (member bool, found bool) {
	if x, ok := c.cache.Get(membershipKey(roomId, userId)); ok {
		return x.(bool), true
	}
	return false, false
}

// ForgetRoom drops every cached entry for the room (after it is destroyed).
func (c *RoomMembershipCache) ForgetRoom(roomId uuid.UUID) {
	prefix := roomId.String() + ":"
	for key := range c.cache.Items() {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			c.cache.Delete(key)
		}
	}
}
