package utils

import (
	"context"
	"sync"
	"time"
)

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.RWMutex
)

func revokedKey(id string) string { return "session:revoked:" + id }

// RevokeSession marks a session id as logged out until its natural expiry.
func RevokeSession(id string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if id == "" || ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, revokedKey(id), "1", ttl).Err(); err == nil {
			return
		}
		Sugar.Warnw("session revoke fell back to memory", "session", id)
	}
	revokedMu.Lock()
	revoked[id] = expiresAt
	revokedMu.Unlock()
}

// IsSessionRevoked reports whether the session id was logged out before expiry.
func IsSessionRevoked(id string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, revokedKey(id)).Result(); err == nil && n > 0 {
			return true
		}
	}

	revokedMu.RLock()
	exp, ok := revoked[id]
	revokedMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		revokedMu.Lock()
		delete(revoked, id)
		revokedMu.Unlock()
		return false
	}
	return true
}
