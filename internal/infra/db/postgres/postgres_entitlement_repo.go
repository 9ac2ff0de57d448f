package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
)

// Ensure entitlementRepo implements repository.EntitlementRepository
var _ repository.EntitlementRepository = (*entitlementRepo)(nil)

type entitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *entitlementRepo {
	return &entitlementRepo{pool: pool}
}

const entitlementColumns = `id, user_id, plan_id, activated_at, expires_at, status, source_intent_id`

func (r *entitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	const q = `
INSERT INTO entitlements (
  id, user_id, plan_id, activated_at, expires_at, status, source_intent_id
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  expires_at=$5, status=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.PlanID, e.ActivatedAt, e.ExpiresAt, e.Status, e.SourceIntentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *entitlementRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID int64) (*model.Entitlement, error) {
	const q = `
SELECT ` + entitlementColumns + `
  FROM entitlements
 WHERE user_id=$1 AND status='active'
 ORDER BY expires_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID)
}

// MarkExpired flips due active rows in a single statement. The status filter
// excludes rows already expired, so a repeated sweep matches nothing, and a
// fresh active row created after this statement's snapshot is simply not
// seen by it.
func (r *entitlementRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Entitlement, error) {
	const q = `
UPDATE entitlements
   SET status='expired'
 WHERE status='active' AND expires_at < $1
RETURNING ` + entitlementColumns + `;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	return scanEntitlements(rows)
}

func (r *entitlementRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID int64, now time.Time) error {
	const q = `UPDATE entitlements SET status='expired' WHERE user_id=$1 AND status='active';`
	_, err := execSQL(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *entitlementRepo) FindExpiringWithin(ctx context.Context, tx repository.Tx, now time.Time, horizon time.Duration) ([]*model.Entitlement, error) {
	const q = `
SELECT ` + entitlementColumns + `
  FROM entitlements
 WHERE status='active' AND expires_at >= $1 AND expires_at <= $2
 ORDER BY expires_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, now, now.Add(horizon))
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	return scanEntitlements(rows)
}

func (r *entitlementRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.EntitlementStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM entitlements GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.EntitlementStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.EntitlementStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *entitlementRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Entitlement, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	e := &model.Entitlement{}
	var status string
	if err := row.Scan(&e.ID, &e.UserID, &e.PlanID, &e.ActivatedAt, &e.ExpiresAt, &status, &e.SourceIntentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	e.Status = model.EntitlementStatus(status)
	return e, nil
}

func scanEntitlements(rows pgx.Rows) ([]*model.Entitlement, error) {
	var out []*model.Entitlement
	for rows.Next() {
		e := &model.Entitlement{}
		var status string
		if err := rows.Scan(&e.ID, &e.UserID, &e.PlanID, &e.ActivatedAt, &e.ExpiresAt, &status, &e.SourceIntentID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.Status = model.EntitlementStatus(status)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
