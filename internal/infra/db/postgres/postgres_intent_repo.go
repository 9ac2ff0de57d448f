package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
)

var _ repository.PaymentIntentRepository = (*intentRepo)(nil)

type intentRepo struct{ pool *pgxpool.Pool }

func NewPaymentIntentRepo(pool *pgxpool.Pool) *intentRepo {
	return &intentRepo{pool: pool}
}

const intentColumns = `id, user_id, plan_id, amount_cents, status, gateway_ref, pix_code, created_at, updated_at`

func (r *intentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentIntent) error {
	const q = `
INSERT INTO payment_intents (
  id, user_id, plan_id, amount_cents, status, gateway_ref, pix_code, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  status=$5, gateway_ref=$6, pix_code=$7, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.PlanID, p.AmountCents, p.Status, p.GatewayRef, p.PixCode, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *intentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentIntent, error) {
	q := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return r.queryOne(ctx, tx, q, id)
}

func (r *intentRepo) FindByGatewayRef(ctx context.Context, tx repository.Tx, ref string) (*model.PaymentIntent, error) {
	const q = `SELECT ` + intentColumns + ` FROM payment_intents WHERE gateway_ref=$1 LIMIT 1;`
	return r.queryOne(ctx, tx, q, ref)
}

// UpdateStatusIfPending atomically finalizes a pending intent. The status
// predicate makes terminal states sticky: the second writer in a race
// matches zero rows and learns it lost.
func (r *intentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.IntentStatus) (bool, error) {
	const q = `
UPDATE payment_intents
   SET status = $2, updated_at = NOW()
 WHERE id = $1 AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *intentRepo) ApprovedTotals(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(amount_cents),0) FROM payment_intents WHERE status='approved';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, 0, err
	}
	var count, revenue int64
	if err := row.Scan(&count, &revenue); err != nil {
		return 0, 0, domain.ErrReadDatabaseRow
	}
	return count, revenue, nil
}

func (r *intentRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.PaymentIntent, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	p := &model.PaymentIntent{}
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.PlanID, &p.AmountCents, &status, &p.GatewayRef, &p.PixCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Status = model.IntentStatus(status)
	return p, nil
}
