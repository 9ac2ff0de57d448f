package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

// SaveUnique performs the check-and-insert in one transaction guarded by a
// per-(user,kind) advisory lock, so two concurrent sweep ticks cannot both
// record the same reminder.
func (r *notificationLogRepo) SaveUnique(ctx context.Context, tx repository.Tx, userID int64, kind string, sentAt time.Time, window time.Duration) (bool, error) {
	run := func(ctx context.Context, qtx repository.Tx) (bool, error) {
		const lockQ = `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2));`
		if _, err := execSQL(ctx, r.pool, qtx, lockQ, userID, kind); err != nil {
			return false, domain.ErrOperationFailed
		}
		exists, err := r.ExistsRecent(ctx, qtx, userID, kind, sentAt.Add(-window))
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
		const insQ = `INSERT INTO notification_log (id, user_id, kind, sent_at) VALUES ($1,$2,$3,$4);`
		if _, err := execSQL(ctx, r.pool, qtx, insQ, uuid.NewString(), userID, kind, sentAt); err != nil {
			return false, domain.ErrOperationFailed
		}
		return true, nil
	}

	// Advisory xact locks need a transaction; open one unless the caller
	// already supplied a handle.
	if _, ok := tx.(pgx.Tx); ok {
		return run(ctx, tx)
	}
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	defer func() { _ = dbTx.Rollback(ctx) }()
	inserted, err := run(ctx, dbTx)
	if err != nil {
		return false, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return false, domain.ErrOperationFailed
	}
	return inserted, nil
}

func (r *notificationLogRepo) ExistsRecent(ctx context.Context, tx repository.Tx, userID int64, kind string, since time.Time) (bool, error) {
	const q = `
SELECT EXISTS(
    SELECT 1 FROM notification_log
    WHERE user_id = $1 AND kind = $2 AND sent_at > $3
);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, kind, since)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
