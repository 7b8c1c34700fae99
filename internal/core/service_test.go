package core

import (
	"context"
	"testing"
	"time"

	"cubenote/pkg/domain"
)

func newTestService(opts ...ServiceOption) *Service {
	return NewInMemoryService(DefaultRulesEngine(), opts...)
}

func TestLoginCreatesProfileWithDefaults(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(WithClock(ClockFunc(func() time.Time { return fixed })))
	ctx := context.Background()

	profile, _, err := svc.Login(ctx, "jiho")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profile.ID != "jiho" || profile.Name != "jiho" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Theme != domain.ThemePastelPink {
		t.Fatalf("expected default theme, got %s", profile.Theme)
	}
	if profile.CreatedAt != fixed.UnixMilli() {
		t.Fatalf("expected createdAt %d, got %d", fixed.UnixMilli(), profile.CreatedAt)
	}
	if id, ok := svc.CurrentUserID(); !ok || id != "jiho" {
		t.Fatalf("login must set current user, got %q ok=%v", id, ok)
	}
}

func TestLoginReusesExistingProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, _, err := svc.Login(ctx, "jiho")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.UpdateProfile(ctx, "jiho", func(p *UserProfile) error {
		p.Name = "Jiho"
		p.Theme = domain.ThemePastelBlue
		return nil
	}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if _, _, err := svc.Login(ctx, "minsu"); err != nil {
		t.Fatalf("login minsu: %v", err)
	}

	again, _, err := svc.Login(ctx, "jiho")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.CreatedAt != first.CreatedAt {
		t.Fatalf("login must not recreate the profile")
	}
	if again.Name != "Jiho" || again.Theme != domain.ThemePastelBlue {
		t.Fatalf("login must return the stored profile: %+v", again)
	}
	if id, _ := svc.CurrentUserID(); id != "jiho" {
		t.Fatalf("current user must follow the last login, got %q", id)
	}
}

func TestProfilesSorted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, id := range []string{"minsu", "jiho", "ara"} {
		if _, _, err := svc.Login(ctx, id); err != nil {
			t.Fatalf("login %s: %v", id, err)
		}
	}
	profiles := svc.Profiles()
	if len(profiles) != 3 || profiles[0].ID != "ara" || profiles[1].ID != "jiho" || profiles[2].ID != "minsu" {
		t.Fatalf("unexpected ordering: %+v", profiles)
	}
}

func TestAvailableIngredientsFiltersAndSorts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, _, err := svc.AddStock(ctx, "jiho", "rice", 2); err != nil {
		t.Fatalf("add rice: %v", err)
	}
	if _, _, err := svc.AddStock(ctx, "jiho", "beef", 1); err != nil {
		t.Fatalf("add beef: %v", err)
	}
	if _, _, err := svc.AddStock(ctx, "jiho", "carrot", 1); err != nil {
		t.Fatalf("add carrot: %v", err)
	}
	if consumed, _, err := svc.ConsumeOne(ctx, "jiho", "carrot"); err != nil || !consumed {
		t.Fatalf("consume carrot: consumed=%v err=%v", consumed, err)
	}

	avail := svc.AvailableIngredients("jiho")
	if len(avail) != 2 || avail[0].ID != "beef" || avail[1].ID != "rice" {
		t.Fatalf("unexpected availability: %+v", avail)
	}
}

func TestSetCurrentUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, ok := svc.CurrentUserID(); ok {
		t.Fatalf("no current user expected initially")
	}
	if _, err := svc.SetCurrentUserID(ctx, "jiho"); err != nil {
		t.Fatalf("set current user: %v", err)
	}
	if id, ok := svc.CurrentUserID(); !ok || id != "jiho" {
		t.Fatalf("current user not set: %q ok=%v", id, ok)
	}
}
