// Package redis stores rate limit windows in Redis so several instances of
// the service can share one counter per identity.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "gatekeeper:rl:"
	maxRetries = 3
)

// RateWindows implements store.RateWindows on top of a Redis client. Keys
// expire on their own once the window and any block have passed.
type RateWindows struct {
	client goredis.UniversalClient
	now    func() time.Time
}

// NewRateWindows wraps client.
func NewRateWindows(client goredis.UniversalClient) *RateWindows {
	return &RateWindows{client: client, now: time.Now}
}

// Ping reports whether Redis is reachable.
func (r *RateWindows) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type windowRecord struct {
	WindowEnd    int64 `json:"window_end"`
	RequestCount int   `json:"request_count"`
	IsBlocked    bool  `json:"is_blocked"`
	BlockUntil   int64 `json:"block_until,omitempty"`
}

type compositeKey struct {
	Kind        string `json:"k"`
	Value       string `json:"v"`
	Endpoint    string `json:"e"`
	Method      string `json:"m"`
	WindowStart int64  `json:"s"`
}

func redisKey(key domain.RateWindowKey) string {
	raw, _ := json.Marshal(compositeKey{
		Kind:        string(key.Identity.Kind),
		Value:       key.Identity.Value,
		Endpoint:    key.Endpoint,
		Method:      key.Method,
		WindowStart: key.WindowStart.UnixMilli(),
	})
	return keyPrefix + cryptox.Fingerprint(raw)
}

func (r *RateWindows) Apply(ctx context.Context, key domain.RateWindowKey, window time.Duration, fn store.RateWindowFunc) (domain.RateWindow, error) {
	curKey := redisKey(key)
	prevKey := redisKey(key.Previous(window))

	for range maxRetries {
		var result domain.RateWindow

		err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
			cur, err := load(ctx, tx, key, curKey)
			switch {
			case errors.Is(err, store.ErrNotFound):
				cur = domain.RateWindow{Key: key, WindowEnd: key.WindowStart.Add(window)}
			case err != nil:
				return err
			}

			var prev *domain.RateWindow
			p, err := load(ctx, tx, key.Previous(window), prevKey)
			switch {
			case err == nil:
				prev = &p
			case !errors.Is(err, store.ErrNotFound):
				return err
			}

			if err := fn(&cur, prev); err != nil {
				return err
			}

			encoded, err := json.Marshal(toRecord(cur))
			if err != nil {
				return err
			}
			ttl := r.ttl(cur, window)

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, curKey, encoded, ttl)
				return nil
			})
			if err != nil {
				return err
			}

			result = cur
			return nil
		}, curKey, prevKey)

		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.RateWindow{}, err
		}
		return result, nil
	}

	return domain.RateWindow{}, fmt.Errorf("%w: rate window %s", store.ErrConflict, key.Endpoint)
}

// ttl keeps a window around for one further window so it can serve as the
// previous window, or until its block lifts if that is later.
func (r *RateWindows) ttl(w domain.RateWindow, window time.Duration) time.Duration {
	until := w.WindowEnd.Add(window)
	if w.IsBlocked && w.BlockUntil.After(until) {
		until = w.BlockUntil
	}
	ttl := until.Sub(r.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (r *RateWindows) GetRateWindow(ctx context.Context, key domain.RateWindowKey) (domain.RateWindow, error) {
	return load(ctx, r.client, key, redisKey(key))
}

// DeleteExpired is a no-op, Redis expires keys itself.
func (r *RateWindows) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func load(ctx context.Context, c goredis.Cmdable, key domain.RateWindowKey, redisKey string) (domain.RateWindow, error) {
	data, err := c.Get(ctx, redisKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.RateWindow{}, store.ErrNotFound
	}
	if err != nil {
		return domain.RateWindow{}, err
	}

	var rec windowRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.RateWindow{}, fmt.Errorf("decode rate window: %w", err)
	}

	w := domain.RateWindow{
		Key:          key,
		WindowEnd:    time.UnixMilli(rec.WindowEnd).UTC(),
		RequestCount: rec.RequestCount,
		IsBlocked:    rec.IsBlocked,
	}
	if rec.BlockUntil != 0 {
		w.BlockUntil = time.UnixMilli(rec.BlockUntil).UTC()
	}
	return w, nil
}

func toRecord(w domain.RateWindow) windowRecord {
	rec := windowRecord{
		WindowEnd:    w.WindowEnd.UnixMilli(),
		RequestCount: w.RequestCount,
		IsBlocked:    w.IsBlocked,
	}
	if !w.BlockUntil.IsZero() {
		rec.BlockUntil = w.BlockUntil.UnixMilli()
	}
	return rec
}

var _ store.RateWindows = (*RateWindows)(nil)
