package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type rateWindowsRepo struct {
	db dbtx
	// begin is set when the repo is not already inside a transaction, so
	// Apply can open its own.
	begin func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func (r *rateWindowsRepo) Apply(ctx context.Context, key domain.RateWindowKey, window time.Duration, fn store.RateWindowFunc) (domain.RateWindow, error) {
	if r.begin == nil {
		return applyRateWindow(ctx, r.db, key, window, fn)
	}

	tx, err := r.begin(ctx, nil)
	if err != nil {
		return domain.RateWindow{}, err
	}
	defer func() { _ = tx.Rollback() }()

	w, err := applyRateWindow(ctx, tx, key, window, fn)
	if err != nil {
		return domain.RateWindow{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.RateWindow{}, err
	}
	return w, nil
}

func applyRateWindow(ctx context.Context, db dbtx, key domain.RateWindowKey, window time.Duration, fn store.RateWindowFunc) (domain.RateWindow, error) {
	cur, err := getRateWindow(ctx, db, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		cur = domain.RateWindow{Key: key, WindowEnd: key.WindowStart.Add(window)}
	case err != nil:
		return domain.RateWindow{}, err
	}

	var prev *domain.RateWindow
	p, err := getRateWindow(ctx, db, key.Previous(window))
	switch {
	case err == nil:
		prev = &p
	case !errors.Is(err, store.ErrNotFound):
		return domain.RateWindow{}, err
	}

	if err := fn(&cur, prev); err != nil {
		return domain.RateWindow{}, err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO rate_windows (identity_kind, identity_value, endpoint, method, window_start,
			window_end, request_count, is_blocked, block_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity_kind, identity_value, endpoint, method, window_start) DO UPDATE SET
			window_end = excluded.window_end,
			request_count = excluded.request_count,
			is_blocked = excluded.is_blocked,
			block_until = excluded.block_until`,
		string(key.Identity.Kind), key.Identity.Value, key.Endpoint, key.Method, toMillis(key.WindowStart),
		toMillis(cur.WindowEnd), cur.RequestCount, boolInt(cur.IsBlocked), toNullMillis(&cur.BlockUntil),
	)
	if err != nil {
		return domain.RateWindow{}, err
	}
	return cur, nil
}

func (r *rateWindowsRepo) GetRateWindow(ctx context.Context, key domain.RateWindowKey) (domain.RateWindow, error) {
	return getRateWindow(ctx, r.db, key)
}

func getRateWindow(ctx context.Context, db dbtx, key domain.RateWindowKey) (domain.RateWindow, error) {
	var (
		w          = domain.RateWindow{Key: key}
		windowEnd  int64
		blockUntil sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `
		SELECT window_end, request_count, is_blocked, block_until
		FROM rate_windows
		WHERE identity_kind = ? AND identity_value = ? AND endpoint = ? AND method = ? AND window_start = ?`,
		string(key.Identity.Kind), key.Identity.Value, key.Endpoint, key.Method, toMillis(key.WindowStart),
	).Scan(&windowEnd, &w.RequestCount, &w.IsBlocked, &blockUntil)
	if err != nil {
		return domain.RateWindow{}, mapNotFound(err)
	}
	w.WindowEnd = fromMillis(windowEnd)
	if t := fromNullMillis(blockUntil); t != nil {
		w.BlockUntil = *t
	}
	return w, nil
}

func (r *rateWindowsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ms := toMillis(now)
	return rowsAffected(r.db.ExecContext(ctx, `
		DELETE FROM rate_windows
		WHERE window_end <= ? AND (block_until IS NULL OR block_until <= ?)`,
		ms, ms,
	))
}
