//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/adapter"
	"telegram-group-subscription/internal/domain/ports/repository"
)

// ---- In-memory PaymentIntentRepository ----

type MockIntentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentIntent

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.PaymentIntent) error
	FindByIDFunc              func(ctx context.Context, tx repository.Tx, id string) (*model.PaymentIntent, error)
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, status model.IntentStatus) (bool, error)
}

func NewMockIntentRepo() *MockIntentRepo {
	return &MockIntentRepo{store: make(map[string]*model.PaymentIntent)}
}

func (m *MockIntentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentIntent) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockIntentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentIntent, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockIntentRepo) FindByGatewayRef(ctx context.Context, tx repository.Tx, ref string) (*model.PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.GatewayRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockIntentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.IntentStatus) (bool, error) {
	if m.UpdateStatusIfPendingFunc != nil {
		return m.UpdateStatusIfPendingFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.IntentStatusPending {
		return false, nil
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockIntentRepo) ApprovedTotals(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count, revenue int64
	for _, p := range m.store {
		if p.Status == model.IntentStatusApproved {
			count++
			revenue += p.AmountCents
		}
	}
	return count, revenue, nil
}

// ---- In-memory EntitlementRepository ----

type MockEntitlementRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Entitlement

	SaveFunc               func(ctx context.Context, tx repository.Tx, e *model.Entitlement) error
	FindExpiringWithinFunc func(ctx context.Context, tx repository.Tx, now time.Time, horizon time.Duration) ([]*model.Entitlement, error)
}

func NewMockEntitlementRepo() *MockEntitlementRepo {
	return &MockEntitlementRepo{store: make(map[string]*model.Entitlement)}
}

func (m *MockEntitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[e.ID] = &cp
	return nil
}

func (m *MockEntitlementRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID int64) (*model.Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Entitlement
	for _, e := range m.store {
		if e.UserID == userID && e.Status == model.EntitlementStatusActive {
			if latest == nil || e.ExpiresAt.After(latest.ExpiresAt) {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockEntitlementRepo) MarkExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Entitlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Entitlement
	for _, e := range m.store {
		if e.Status == model.EntitlementStatusActive && e.ExpiresAt.Before(now) {
			e.Status = model.EntitlementStatusExpired
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEntitlementRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.UserID == userID && e.Status == model.EntitlementStatusActive {
			e.Status = model.EntitlementStatusExpired
		}
	}
	return nil
}

func (m *MockEntitlementRepo) FindExpiringWithin(ctx context.Context, tx repository.Tx, now time.Time, horizon time.Duration) ([]*model.Entitlement, error) {
	if m.FindExpiringWithinFunc != nil {
		return m.FindExpiringWithinFunc(ctx, tx, now, horizon)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cut := now.Add(horizon)
	var out []*model.Entitlement
	for _, e := range m.store {
		if e.Status == model.EntitlementStatusActive && !e.ExpiresAt.Before(now) && !e.ExpiresAt.After(cut) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEntitlementRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.EntitlementStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.EntitlementStatus]int)
	for _, e := range m.store {
		out[e.Status]++
	}
	return out, nil
}

// ---- In-memory NotificationLogRepository ----

type notifEntry struct {
	userID int64
	kind   string
	sentAt time.Time
}

type MockNotificationLogRepo struct {
	mu      sync.Mutex
	entries []notifEntry

	SaveUniqueFunc func(ctx context.Context, tx repository.Tx, userID int64, kind string, sentAt time.Time, window time.Duration) (bool, error)
}

func NewMockNotificationLogRepo() *MockNotificationLogRepo {
	return &MockNotificationLogRepo{}
}

func (m *MockNotificationLogRepo) SaveUnique(ctx context.Context, tx repository.Tx, userID int64, kind string, sentAt time.Time, window time.Duration) (bool, error) {
	if m.SaveUniqueFunc != nil {
		return m.SaveUniqueFunc(ctx, tx, userID, kind, sentAt, window)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	since := sentAt.Add(-window)
	for _, e := range m.entries {
		if e.userID == userID && e.kind == kind && e.sentAt.After(since) {
			return false, nil
		}
	}
	m.entries = append(m.entries, notifEntry{userID: userID, kind: kind, sentAt: sentAt})
	return true, nil
}

func (m *MockNotificationLogRepo) ExistsRecent(ctx context.Context, tx repository.Tx, userID int64, kind string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.userID == userID && e.kind == kind && e.sentAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

// ---- In-memory PlanCatalog ----

type MockPlanCatalog struct {
	plans map[string]*model.Plan
}

func NewMockPlanCatalog(plans ...*model.Plan) *MockPlanCatalog {
	c := &MockPlanCatalog{plans: make(map[string]*model.Plan)}
	for _, p := range plans {
		c.plans[p.ID] = p
	}
	return c
}

func (c *MockPlanCatalog) FindByID(ctx context.Context, id string) (*model.Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return nil, domain.ErrUnknownPlan
	}
	cp := *p
	return &cp, nil
}

func (c *MockPlanCatalog) ListAll(ctx context.Context) ([]*model.Plan, error) {
	out := make([]*model.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock PaymentGateway ----

type MockGateway struct {
	CreateIntentFunc func(ctx context.Context, amountCents int64, description, externalRef string, payer adapter.PayerInfo) (string, string, error)
	GetStatusFunc    func(ctx context.Context, gatewayRef string) (adapter.GatewayStatus, int64, error)

	mu          sync.Mutex
	statusCalls int
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) CreateIntent(ctx context.Context, amountCents int64, description, externalRef string, payer adapter.PayerInfo) (string, string, error) {
	if g.CreateIntentFunc != nil {
		return g.CreateIntentFunc(ctx, amountCents, description, externalRef, payer)
	}
	return "gw-" + externalRef, "pix-code-" + externalRef, nil
}

func (g *MockGateway) GetStatus(ctx context.Context, gatewayRef string) (adapter.GatewayStatus, int64, error) {
	g.mu.Lock()
	g.statusCalls++
	g.mu.Unlock()
	if g.GetStatusFunc != nil {
		return g.GetStatusFunc(ctx, gatewayRef)
	}
	return adapter.GatewayStatusPending, 0, nil
}

func (g *MockGateway) StatusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

// ---- Mock GroupAccess ----

type MockGroupAccess struct {
	mu      sync.Mutex
	Revoked []int64
	Invited []int64
	Notices map[int64][]string

	RevokeErr error
	InviteErr error
	NotifyErr error
}

func NewMockGroupAccess() *MockGroupAccess {
	return &MockGroupAccess{Notices: make(map[int64][]string)}
}

func (g *MockGroupAccess) RevokeAccess(ctx context.Context, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RevokeErr != nil {
		return g.RevokeErr
	}
	g.Revoked = append(g.Revoked, userID)
	return nil
}

func (g *MockGroupAccess) SendInviteLink(ctx context.Context, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.InviteErr != nil {
		return g.InviteErr
	}
	g.Invited = append(g.Invited, userID)
	return nil
}

func (g *MockGroupAccess) NotifyUser(ctx context.Context, userID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.NotifyErr != nil {
		return g.NotifyErr
	}
	g.Notices[userID] = append(g.Notices[userID], text)
	return nil
}

func (g *MockGroupAccess) NoticeCount(userID int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Notices[userID])
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	// By default, execute the function immediately with NoTX.
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker (implements redis.Locker port) ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", errors.New("locked")
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// testPlan is a convenience constructor for catalog fixtures.
func testPlan(id string, priceCents int64, days int) *model.Plan {
	return &model.Plan{
		ID:           id,
		Name:         fmt.Sprintf("Plano %s", id),
		PriceCents:   priceCents,
		DurationDays: days,
	}
}
