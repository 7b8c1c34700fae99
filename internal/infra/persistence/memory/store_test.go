package memory

import (
	"context"
	"errors"
	"testing"

	"cubenote/pkg/domain"
)

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }
func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_all",
		Severity: domain.SeverityBlock,
		Message:  "blocked",
	}}}, nil
}

func TestTransactionCommit(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.PutProfile(UserProfile{ID: "jiho", Name: "Jiho"}); err != nil {
			return err
		}
		tx.SetCurrentUserID("jiho")
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if p, ok := store.GetProfile("jiho"); !ok || p.Name != "Jiho" {
		t.Fatalf("profile not committed: %+v ok=%v", p, ok)
	}
	if id, ok := store.CurrentUserID(); !ok || id != "jiho" {
		t.Fatalf("current user not committed: %q ok=%v", id, ok)
	}
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.PutProfile(UserProfile{ID: "jiho"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if _, ok := store.GetProfile("jiho"); ok {
		t.Fatalf("rolled-back profile must not be visible")
	}
}

func TestBlockingRulePreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)
	ctx := context.Background()

	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.PutProfile(UserProfile{ID: "jiho"})
		return err
	})
	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result, got %+v", res)
	}
	if _, ok := store.GetProfile("jiho"); ok {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestPutProfileRejectsEmptyID(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.PutProfile(UserProfile{})
		return err
	})
	var formatErr domain.InvalidFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected InvalidFormatError, got %v", err)
	}
}

func TestUpdateProfileMissing(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateProfile("ghost", func(*UserProfile) error { return nil })
		return err
	})
	var notFound domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateInventoryMaterialisesEmpty(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateInventory("jiho", func(inv Inventory) error {
			if len(inv) != 0 {
				t.Fatalf("expected empty inventory on first use, got %v", inv)
			}
			inv["rice"] = domain.InventoryItem{Ingredient: domain.Ingredient{ID: "rice"}, Count: 2}
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.GetInventory("jiho")["rice"].Count != 2 {
		t.Fatalf("inventory not committed")
	}
}

func TestCommittedReadsAreCopies(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateInventory("jiho", func(inv Inventory) error {
			inv["rice"] = domain.InventoryItem{Ingredient: domain.Ingredient{ID: "rice"}, Count: 1}
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	inv := store.GetInventory("jiho")
	item := inv["rice"]
	item.Count = 42
	inv["rice"] = item
	if store.GetInventory("jiho")["rice"].Count != 1 {
		t.Fatalf("mutating a read copy leaked into the store")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.PutProfile(UserProfile{ID: "jiho", Name: "Jiho"}); err != nil {
			return err
		}
		if _, err := tx.UpdateDietRecord("jiho", func(rec DietRecord) error {
			rec["2026-03-01"] = domain.DayRecord{
				Breakfast: domain.MealSession{Ingredients: []domain.MealIngredient{{IngredientID: "rice"}}},
			}
			return nil
		}); err != nil {
			return err
		}
		tx.SetCurrentUserID("jiho")
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if p, ok := restored.GetProfile("jiho"); !ok || p.Name != "Jiho" {
		t.Fatalf("profile lost in round trip")
	}
	if restored.GetDietRecord("jiho").IngredientCount("rice") != 1 {
		t.Fatalf("diet record lost in round trip")
	}
	if id, ok := restored.CurrentUserID(); !ok || id != "jiho" {
		t.Fatalf("session pointer lost in round trip")
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.PutProfile(UserProfile{ID: "jiho"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := store.View(ctx, func(view RuleView) error {
		if _, ok := view.FindProfile("jiho"); !ok {
			t.Fatalf("view must see committed profile")
		}
		if _, ok := view.FindInventory("jiho"); ok {
			t.Fatalf("view must not invent an inventory")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
