package core

import (
	"context"
	"sort"
	"time"

	"cubenote/internal/infra/persistence/memory"
	"cubenote/pkg/catalog"
	"cubenote/pkg/domain"
)

// Service exposes the transactional ledger operations over a persistent store.
// All mutations run inside a store transaction so the registered rules see the
// post-mutation state before commit.
type Service struct {
	store   PersistentStore
	logger  Logger
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine. Pass DefaultRulesEngine() for the built-in invariants.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// DefaultRulesEngine returns an engine with the built-in ledger rules
// registered.
func DefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StockNonNegativeRule{})
	engine.Register(MealCapacityRule{})
	engine.Register(CatalogReferenceRule{})
	return engine
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Login resolves the profile for the given user id, creating it with defaults
// when absent, and makes it the current user.
func (s *Service) Login(ctx context.Context, userID string) (UserProfile, Result, error) {
	var profile UserProfile
	res, err := s.observe(ctx, "login", EntityProfile, userID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			existing, ok := tx.FindProfile(userID)
			if ok {
				profile = existing
				tx.SetCurrentUserID(userID)
				return nil
			}
			created, err := tx.PutProfile(UserProfile{
				ID:        userID,
				Name:      userID,
				Theme:     domain.ThemePastelPink,
				CreatedAt: s.clock.Now().UnixMilli(),
			})
			if err != nil {
				return err
			}
			profile = created
			tx.SetCurrentUserID(userID)
			return nil
		})
	})
	return profile, res, err
}

// UpdateProfile mutates a profile using the provided mutator.
func (s *Service) UpdateProfile(ctx context.Context, userID string, mutator func(*UserProfile) error) (UserProfile, Result, error) {
	var updated UserProfile
	res, err := s.observe(ctx, "update_profile", EntityProfile, userID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateProfile(userID, mutator)
			return err
		})
	})
	return updated, res, err
}

// Profile returns the committed profile for the user id.
func (s *Service) Profile(userID string) (UserProfile, bool) {
	return s.store.GetProfile(userID)
}

// Profiles lists all committed profiles sorted by id.
func (s *Service) Profiles() []UserProfile {
	out := s.store.ListProfiles()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Inventory returns the committed inventory for the user, empty when absent.
func (s *Service) Inventory(userID string) Inventory {
	return s.store.GetInventory(userID)
}

// DietRecord returns the committed diet record for the user, empty when absent.
func (s *Service) DietRecord(userID string) DietRecord {
	return s.store.GetDietRecord(userID)
}

// AvailableIngredients returns the inventory items with stock remaining,
// sorted by ingredient id. Zero-count and absent items are excluded.
func (s *Service) AvailableIngredients(userID string) []InventoryItem {
	inv := s.store.GetInventory(userID)
	out := make([]InventoryItem, 0, len(inv))
	for _, item := range inv {
		if item.Count > 0 {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CurrentUserID returns the persisted session pointer.
func (s *Service) CurrentUserID() (string, bool) {
	return s.store.CurrentUserID()
}

// SetCurrentUserID updates the persisted session pointer.
func (s *Service) SetCurrentUserID(ctx context.Context, userID string) (Result, error) {
	return s.observe(ctx, "set_current_user", EntitySession, userID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			tx.SetCurrentUserID(userID)
			return nil
		})
	})
}

// Catalog lookup shared by the ledger operations.
func catalogIngredient(id string) (Ingredient, error) {
	ing, ok := catalog.Lookup(id)
	if !ok {
		return Ingredient{}, domain.InvalidIngredientError{IngredientID: id}
	}
	return ing, nil
}

// validateDate rejects date keys that are not calendar dates in YYYY-MM-DD form.
func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.InvalidDateError{Date: date}
	}
	return nil
}

func validateSlot(slot MealSlot) error {
	if !slot.Valid() {
		return domain.InvalidFormatError{Reason: "unknown meal slot " + string(slot)}
	}
	return nil
}
