package auth

import (
	"sync"
	"time"
)

// Blacklist is the set of tokens revoked by logout. Membership is checked on
// every authenticated request, so reads take the shared lock. Entries are
// kept only until the token's own expiry; past that point the verifier
// rejects the token anyway, so the entry is dropped to bound memory.
type Blacklist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token -> token expiry
	now     func() time.Time
}

func NewBlacklist() *Blacklist {
	return &Blacklist{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Revoke adds the token to the blacklist until expiresAt. Expired entries
// are swept on the same write lock, so the set never grows past the number
// of live revoked tokens.
func (b *Blacklist) Revoke(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for t, exp := range b.revoked {
		if exp.Before(now) {
			delete(b.revoked, t)
		}
	}
	b.revoked[token] = expiresAt
}

// IsRevoked reports whether the token has been invalidated by logout.
func (b *Blacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	exp, ok := b.revoked[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	return !exp.Before(b.now())
}

// Len reports the number of live entries, for tests and diagnostics.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.revoked)
}
