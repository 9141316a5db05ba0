// Package cache holds in-memory read-through layers in front of a store.
package cache

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultBlacklistTTL bounds how long a positive lookup is remembered.
const DefaultBlacklistTTL = 5 * time.Minute

// ExpiryLookup is implemented by stores that can report when a revocation
// lapses. Without it a store hit is cached for the full cache TTL.
type ExpiryLookup interface {
	BlacklistedUntil(ctx context.Context, key domain.BlacklistKey, now time.Time) (time.Time, bool, error)
}

// Blacklist remembers revoked token ids so the guard does not hit the
// database for every replayed token. Only positive answers are cached:
// a token that is not revoked yet may be revoked by another instance at any
// moment.
type Blacklist struct {
	next  store.Blacklist
	cache *ttlcache.Cache[string, time.Time]
	ttl   time.Duration
}

// NewBlacklist wraps next. A non-positive ttl uses DefaultBlacklistTTL.
// Call Stop to end the expiry goroutine.
func NewBlacklist(next store.Blacklist, ttl time.Duration) *Blacklist {
	if ttl <= 0 {
		ttl = DefaultBlacklistTTL
	}

	c := ttlcache.New(
		ttlcache.WithTTL[string, time.Time](ttl),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)
	go c.Start()

	return &Blacklist{next: next, cache: c, ttl: ttl}
}

// Stop halts the background expiry loop.
func (b *Blacklist) Stop() { b.cache.Stop() }

// Len returns the number of cached revocations.
func (b *Blacklist) Len() int { return b.cache.Len() }

func (b *Blacklist) AddToBlacklist(ctx context.Context, e domain.BlacklistEntry) error {
	if err := b.next.AddToBlacklist(ctx, e); err != nil {
		return err
	}
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	b.remember(e.TokenID, e.ExpiresAt, now)
	return nil
}

func (b *Blacklist) IsTokenBlacklisted(ctx context.Context, key domain.BlacklistKey, now time.Time) (bool, error) {
	if item := b.cache.Get(key.TokenID); item != nil && now.Before(item.Value()) {
		return true, nil
	}

	if lookup, ok := b.next.(ExpiryLookup); ok {
		until, ok, err := lookup.BlacklistedUntil(ctx, key, now)
		if err != nil || !ok {
			return ok, err
		}
		b.remember(key.TokenID, until, now)
		return true, nil
	}

	ok, err := b.next.IsTokenBlacklisted(ctx, key, now)
	if err != nil || !ok {
		return ok, err
	}
	b.remember(key.TokenID, now.Add(b.ttl), now)
	return true, nil
}

func (b *Blacklist) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	b.cache.DeleteExpired()
	return b.next.DeleteExpired(ctx, now)
}

func (b *Blacklist) remember(tokenID string, expiresAt, now time.Time) {
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return
	}
	if ttl > b.ttl {
		ttl = b.ttl
	}
	b.cache.Set(tokenID, expiresAt, ttl)
}

var _ store.Blacklist = (*Blacklist)(nil)
