//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
	"telegram-group-subscription/internal/usecase"
)

// seedEntitlement stores an active entitlement expiring at the given instant.
func seedEntitlement(t *testing.T, repo *MockEntitlementRepo, id string, userID int64, expiresAt time.Time) *model.Entitlement {
	t.Helper()
	ent := &model.Entitlement{
		ID:             id,
		UserID:         userID,
		PlanID:         "monthly",
		ActivatedAt:    expiresAt.Add(-30 * 24 * time.Hour),
		ExpiresAt:      expiresAt,
		Status:         model.EntitlementStatusActive,
		SourceIntentID: "intent-" + id,
	}
	if err := repo.Save(context.Background(), repository.NoTX, ent); err != nil {
		t.Fatalf("fixture save: %v", err)
	}
	return ent
}

func TestEntitlementUseCase_ExpireDue(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions only rows past their expiry", func(t *testing.T) {
		// --- Arrange ---
		repo := NewMockEntitlementRepo()
		now := time.Now()
		seedEntitlement(t, repo, "due", 1, now.Add(-time.Second))
		seedEntitlement(t, repo, "not-due", 2, now.Add(time.Hour))
		uc := usecase.NewEntitlementUseCase(repo, newTestLogger())

		// --- Act ---
		expired, err := uc.ExpireDue(ctx, now)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(expired) != 1 {
			t.Fatalf("expected 1 expired row, got %d", len(expired))
		}
		if expired[0].UserID != 1 {
			t.Errorf("wrong row expired: user %d", expired[0].UserID)
		}
		if _, err := repo.FindActiveByUser(ctx, repository.NoTX, 2); err != nil {
			t.Errorf("future window must stay active: %v", err)
		}
		if _, err := repo.FindActiveByUser(ctx, repository.NoTX, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Error("expired user must have no active row")
		}
	})

	t.Run("repeated sweeps are no-ops", func(t *testing.T) {
		// --- Arrange ---
		repo := NewMockEntitlementRepo()
		now := time.Now()
		seedEntitlement(t, repo, "due", 1, now.Add(-time.Second))
		uc := usecase.NewEntitlementUseCase(repo, newTestLogger())
		if _, err := uc.ExpireDue(ctx, now); err != nil {
			t.Fatalf("first sweep: %v", err)
		}

		// --- Act ---
		again, err := uc.ExpireDue(ctx, now)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("second sweep must transition nothing, got %d rows", len(again))
		}
	})
}

func TestEntitlementUseCase_FindExpiringWithin(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	// --- Arrange ---
	repo := NewMockEntitlementRepo()
	inside := seedEntitlement(t, repo, "inside", 1, now.Add(166*time.Hour))   // just under 7 days
	seedEntitlement(t, repo, "outside", 2, now.Add(7*24*time.Hour+time.Hour)) // past the horizon
	uc := usecase.NewEntitlementUseCase(repo, newTestLogger())

	// --- Act ---
	got, err := uc.FindExpiringWithin(ctx, now, 7)

	// --- Assert ---
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].ID != inside.ID {
		t.Errorf("wrong candidate: %s", got[0].ID)
	}
}

func TestEntitlementUseCase_QueryEntitlement(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the active window", func(t *testing.T) {
		// --- Arrange ---
		repo := NewMockEntitlementRepo()
		want := seedEntitlement(t, repo, "ent-1", 42, time.Now().Add(10*24*time.Hour))
		uc := usecase.NewEntitlementUseCase(repo, newTestLogger())

		// --- Act ---
		got, err := uc.QueryEntitlement(ctx, 42)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.ID != want.ID {
			t.Errorf("got entitlement %s, want %s", got.ID, want.ID)
		}
	})

	t.Run("no active window", func(t *testing.T) {
		// --- Arrange ---
		repo := NewMockEntitlementRepo()
		uc := usecase.NewEntitlementUseCase(repo, newTestLogger())

		// --- Act ---
		_, err := uc.QueryEntitlement(ctx, 42)

		// --- Assert ---
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
