// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/adapter"
	"telegram-group-subscription/internal/domain/ports/repository"
	"telegram-group-subscription/internal/infra/metrics"
	"telegram-group-subscription/internal/infra/redis"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type ReconcileSource string

const (
	SourceWebhook ReconcileSource = "webhook"
	SourceManual  ReconcileSource = "manual"
)

type ReconcileState string

const (
	ReconcilePending  ReconcileState = "pending"
	ReconcileApproved ReconcileState = "approved"
	ReconcileRejected ReconcileState = "rejected"
)

// ReconcileOutcome is the result of one reconciliation attempt. ExpiresAt is
// set only for approved outcomes where the granted window is known.
type ReconcileOutcome struct {
	State     ReconcileState
	ExpiresAt *time.Time
}

type PaymentUseCase interface {
	// CreateIntent mints a payable code with the gateway and persists a
	// pending intent keyed by a locally generated id.
	CreateIntent(ctx context.Context, userID int64, planID string, payer adapter.PayerInfo) (*model.PaymentIntent, error)
	// Reconcile is the single authoritative transition path. Both webhook
	// ingestion and manual confirmation go through here; replays on a
	// terminal intent return the stored outcome unchanged.
	Reconcile(ctx context.Context, intentID string, source ReconcileSource) (*ReconcileOutcome, error)
	// ResolveWebhook maps a gateway payment id to the local intent and
	// reconciles it.
	ResolveWebhook(ctx context.Context, gatewayRef string) (*ReconcileOutcome, error)
}

type paymentUC struct {
	intents repository.PaymentIntentRepository
	ents    repository.EntitlementRepository
	catalog repository.PlanCatalog
	gateway adapter.PaymentGateway
	group   adapter.GroupAccess
	locker  redis.Locker
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewPaymentUseCase(
	intents repository.PaymentIntentRepository,
	ents repository.EntitlementRepository,
	catalog repository.PlanCatalog,
	gateway adapter.PaymentGateway,
	group adapter.GroupAccess,
	locker redis.Locker,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *paymentUC {
	ucLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		intents: intents,
		ents:    ents,
		catalog: catalog,
		gateway: gateway,
		group:   group,
		locker:  locker,
		tm:      tm,
		log:     &ucLog,
	}
}

func (u *paymentUC) CreateIntent(ctx context.Context, userID int64, planID string, payer adapter.PayerInfo) (*model.PaymentIntent, error) {
	plan, err := u.catalog.FindByID(ctx, planID)
	if err != nil {
		return nil, domain.ErrUnknownPlan
	}

	// The local id doubles as the gateway's external reference, so webhook
	// payloads can always be traced back to this intent.
	intentID := uuid.NewString()
	description := fmt.Sprintf("Assinatura %s - Grupo Privado", plan.Name)

	gatewayRef, pixCode, err := u.gateway.CreateIntent(ctx, plan.PriceCents, description, intentID, payer)
	if err != nil {
		u.log.Warn().Err(err).Int64("user_id", userID).Str("plan_id", planID).Msg("gateway create intent failed")
		return nil, err
	}

	intent, err := model.NewPaymentIntent(intentID, userID, plan, gatewayRef, pixCode)
	if err != nil {
		return nil, err
	}
	if err := u.intents.Save(ctx, repository.NoTX, intent); err != nil {
		return nil, err
	}
	metrics.IncIntentCreated()
	u.log.Info().Str("intent_id", intent.ID).Int64("user_id", userID).Str("plan_id", planID).Msg("payment intent created")
	return intent, nil
}

func (u *paymentUC) Reconcile(ctx context.Context, intentID string, source ReconcileSource) (*ReconcileOutcome, error) {
	// Per-intent serialization point: webhook and manual confirmation racing
	// on the same intent take turns here, so exactly one caller performs the
	// terminal transition and the other observes the stored result.
	lockKey := "reconcile:" + intentID
	token, err := u.locker.TryLock(ctx, lockKey, 30*time.Second)
	if err != nil {
		return nil, domain.ErrLockNotAcquired
	}
	defer func() { _ = u.locker.Unlock(ctx, lockKey, token) }()

	intent, err := u.intents.FindByID(ctx, repository.NoTX, intentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}

	if intent.Terminal() {
		return u.storedOutcome(ctx, intent), nil
	}

	status, _, err := u.gateway.GetStatus(ctx, intent.GatewayRef)
	if err != nil {
		// Gateway trouble is never a rejection: the intent stays pending and
		// the next replay or manual confirmation retries.
		u.log.Warn().Err(err).Str("intent_id", intentID).Str("source", string(source)).Msg("gateway status query failed")
		return nil, err
	}

	switch status {
	case adapter.GatewayStatusApproved:
		return u.approve(ctx, intent, source)
	case adapter.GatewayStatusRejected:
		if _, err := u.intents.UpdateStatusIfPending(ctx, repository.NoTX, intent.ID, model.IntentStatusRejected); err != nil {
			return nil, err
		}
		metrics.IncPayment(string(model.IntentStatusRejected))
		u.log.Info().Str("intent_id", intentID).Str("source", string(source)).Msg("payment rejected")
		return &ReconcileOutcome{State: ReconcileRejected}, nil
	default:
		return &ReconcileOutcome{State: ReconcilePending}, nil
	}
}

// approve performs the single logical transaction that marks the intent
// approved and grants the fresh entitlement window.
func (u *paymentUC) approve(ctx context.Context, intent *model.PaymentIntent, source ReconcileSource) (*ReconcileOutcome, error) {
	plan, err := u.catalog.FindByID(ctx, intent.PlanID)
	if err != nil {
		return nil, domain.ErrUnknownPlan
	}

	now := time.Now()
	var granted *model.Entitlement
	var raced bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		won, err := u.intents.UpdateStatusIfPending(ctx, tx, intent.ID, model.IntentStatusApproved)
		if err != nil {
			return err
		}
		if !won {
			// Another process finalized the intent between our read and this
			// update. Treat it like a replay.
			raced = true
			return nil
		}
		// Renewal policy: the new window always runs from now; the previous
		// active row (if any) is retired in the same transaction so the
		// at-most-one-active invariant holds at every observation instant.
		if err := u.ents.ExpireActiveByUser(ctx, tx, intent.UserID, now); err != nil {
			return err
		}
		ent, err := model.NewEntitlement(ulid.Make().String(), intent.UserID, plan, intent.ID, now)
		if err != nil {
			return err
		}
		if err := u.ents.Save(ctx, tx, ent); err != nil {
			return err
		}
		granted = ent
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raced {
		fresh, err := u.intents.FindByID(ctx, repository.NoTX, intent.ID)
		if err != nil {
			return nil, err
		}
		return u.storedOutcome(ctx, fresh), nil
	}

	metrics.IncPayment(string(model.IntentStatusApproved))
	metrics.AddRevenue(intent.AmountCents)
	metrics.IncEntitlementActivated()
	u.log.Info().
		Str("intent_id", intent.ID).
		Int64("user_id", intent.UserID).
		Str("source", string(source)).
		Time("expires_at", granted.ExpiresAt).
		Msg("payment approved, entitlement granted")

	// Access delivery is advisory: a failed send is logged, never retried
	// synchronously, and never rolls back the grant.
	if err := u.group.SendInviteLink(ctx, intent.UserID); err != nil {
		u.log.Warn().Err(err).Int64("user_id", intent.UserID).Msg("invite link delivery failed")
	}

	expires := granted.ExpiresAt
	return &ReconcileOutcome{State: ReconcileApproved, ExpiresAt: &expires}, nil
}

// storedOutcome rebuilds the outcome of an already-terminal intent without
// touching any state.
func (u *paymentUC) storedOutcome(ctx context.Context, intent *model.PaymentIntent) *ReconcileOutcome {
	if intent.Status == model.IntentStatusRejected {
		return &ReconcileOutcome{State: ReconcileRejected}
	}
	out := &ReconcileOutcome{State: ReconcileApproved}
	if ent, err := u.ents.FindActiveByUser(ctx, repository.NoTX, intent.UserID); err == nil && ent.SourceIntentID == intent.ID {
		expires := ent.ExpiresAt
		out.ExpiresAt = &expires
	}
	return out
}

func (u *paymentUC) ResolveWebhook(ctx context.Context, gatewayRef string) (*ReconcileOutcome, error) {
	intent, err := u.intents.FindByGatewayRef(ctx, repository.NoTX, gatewayRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}
	return u.Reconcile(ctx, intent.ID, SourceWebhook)
}
