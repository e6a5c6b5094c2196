package utils

import (
	"context"
	"sync"
	"time"
)

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

// BlacklistToken revokes token until expiry. A zero expiry keeps it for the
// configured token lifetime.
func BlacklistToken(token string, expiry time.Time) {
	if expiry.IsZero() {
		_, ttl := signingConfig()
		expiry = time.Now().Add(ttl)
	}
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = expiry
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	expiry, exists := blacklistedTokens[token]
	blacklistMutex.RUnlock()
	return exists && time.Now().Before(expiry)
}

// PurgeExpiredTokens drops blacklist entries whose token has expired anyway.
func PurgeExpiredTokens(now time.Time) int {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	removed := 0
	for token, expiry := range blacklistedTokens {
		if !now.Before(expiry) {
			delete(blacklistedTokens, token)
			removed++
		}
	}
	return removed
}

// RunBlacklistJanitor purges expired entries every interval until ctx ends.
func RunBlacklistJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := PurgeExpiredTokens(now); n > 0 {
				InfoLogger.Infof("Purged %d expired tokens from blacklist", n)
			}
		}
	}
}
