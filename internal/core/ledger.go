package core

import (
	"context"

	"cubenote/pkg/domain"
)

// AddStock creates or increments the inventory item for a catalog ingredient.
// Count must be positive; the descriptor is copied from the catalog on first
// add so the stored item is self-describing.
func (s *Service) AddStock(ctx context.Context, userID, ingredientID string, count int) (Inventory, Result, error) {
	var updated Inventory
	res, err := s.observe(ctx, "add_stock", EntityInventory, ingredientID, ActionUpdate, func(ctx context.Context) (Result, error) {
		if count <= 0 {
			return Result{}, domain.InvalidFormatError{Reason: "stock count must be positive"}
		}
		ing, err := catalogIngredient(ingredientID)
		if err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateInventory(userID, func(inv Inventory) error {
				item, ok := inv[ingredientID]
				if !ok {
					item = InventoryItem{Ingredient: ing}
				}
				item.Count += count
				inv[ingredientID] = item
				return nil
			})
			return txErr
		})
	})
	return updated, res, err
}

// ConsumeOne decrements the stock for an ingredient by one. Returns false
// without mutating anything when the item is absent or already at zero.
func (s *Service) ConsumeOne(ctx context.Context, userID, ingredientID string) (bool, Result, error) {
	consumed := false
	res, err := s.observe(ctx, "consume_cube", EntityInventory, ingredientID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, txErr := tx.UpdateInventory(userID, func(inv Inventory) error {
				item, ok := inv[ingredientID]
				if !ok || item.Count <= 0 {
					return nil
				}
				item.Count--
				inv[ingredientID] = item
				consumed = true
				return nil
			})
			return txErr
		})
	})
	return consumed, res, err
}

// RestoreOne increments the stock for an ingredient by one, recreating the
// item from its catalog descriptor when it is no longer present.
func (s *Service) RestoreOne(ctx context.Context, userID, ingredientID string) (Inventory, Result, error) {
	var updated Inventory
	res, err := s.observe(ctx, "restore_cube", EntityInventory, ingredientID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateInventory(userID, func(inv Inventory) error {
				return restoreOne(inv, ingredientID)
			})
			return txErr
		})
	})
	return updated, res, err
}

// restoreOne returns one cube to the inventory, resurrecting the item from
// the catalog when absent. Unknown ids reject rather than storing a bare
// count with no descriptor.
func restoreOne(inv Inventory, ingredientID string) error {
	item, ok := inv[ingredientID]
	if !ok {
		ing, err := catalogIngredient(ingredientID)
		if err != nil {
			return err
		}
		item = InventoryItem{Ingredient: ing}
	}
	item.Count++
	inv[ingredientID] = item
	return nil
}

// RecordMealIngredient deducts one cube from stock and appends an entry to
// the named meal session, atomically. The day and session are materialised on
// first use; amount starts at zero.
func (s *Service) RecordMealIngredient(ctx context.Context, userID, date string, slot MealSlot, ingredientID string) (DayRecord, Result, error) {
	var day DayRecord
	res, err := s.observe(ctx, "record_meal_ingredient", EntityMealEntry, ingredientID, ActionCreate, func(ctx context.Context) (Result, error) {
		if err := validateDate(date); err != nil {
			return Result{}, err
		}
		if err := validateSlot(slot); err != nil {
			return Result{}, err
		}
		if _, err := catalogIngredient(ingredientID); err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			rec, txErr := tx.UpdateDietRecord(userID, func(r DietRecord) error {
				d := r[date]
				session := d.Session(slot)
				if len(session.Ingredients) >= MaxMealIngredients {
					return domain.MealFullError{Date: date, Slot: slot}
				}
				session.Ingredients = append(session.Ingredients, MealIngredient{IngredientID: ingredientID})
				r[date] = d
				return nil
			})
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.UpdateInventory(userID, func(inv Inventory) error {
				item, ok := inv[ingredientID]
				if !ok || item.Count <= 0 {
					return domain.InsufficientStockError{IngredientID: ingredientID}
				}
				item.Count--
				inv[ingredientID] = item
				return nil
			})
			if txErr != nil {
				return txErr
			}
			day = rec[date]
			return nil
		})
	})
	return day, res, err
}

// RemoveMealIngredient deletes the entry at index from the named meal session
// and returns its cube to the inventory, atomically. Remaining entries keep
// their order.
func (s *Service) RemoveMealIngredient(ctx context.Context, userID, date string, slot MealSlot, index int) (DayRecord, Result, error) {
	var day DayRecord
	res, err := s.observe(ctx, "remove_meal_ingredient", EntityMealEntry, date, ActionUpdate, func(ctx context.Context) (Result, error) {
		if err := validateDate(date); err != nil {
			return Result{}, err
		}
		if err := validateSlot(slot); err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var removedID string
			rec, txErr := tx.UpdateDietRecord(userID, func(r DietRecord) error {
				d, ok := r[date]
				if !ok {
					return domain.NotFoundError{Entity: EntityDietRecord, ID: date}
				}
				session := d.Session(slot)
				if index < 0 || index >= len(session.Ingredients) {
					return domain.NotFoundError{Entity: EntityMealEntry, ID: date + "/" + string(slot)}
				}
				removedID = session.Ingredients[index].IngredientID
				session.Ingredients = append(session.Ingredients[:index], session.Ingredients[index+1:]...)
				r[date] = d
				return nil
			})
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.UpdateInventory(userID, func(inv Inventory) error {
				return restoreOne(inv, removedID)
			})
			if txErr != nil {
				return txErr
			}
			day = rec[date]
			return nil
		})
	})
	return day, res, err
}

// SetMealIngredientAmount records the grams served for the entry at index.
// Pure field update; stock is not involved.
func (s *Service) SetMealIngredientAmount(ctx context.Context, userID, date string, slot MealSlot, index, grams int) (DayRecord, Result, error) {
	var day DayRecord
	res, err := s.observe(ctx, "set_meal_amount", EntityMealEntry, date, ActionUpdate, func(ctx context.Context) (Result, error) {
		if err := validateDate(date); err != nil {
			return Result{}, err
		}
		if err := validateSlot(slot); err != nil {
			return Result{}, err
		}
		if grams < 0 {
			return Result{}, domain.InvalidFormatError{Reason: "amount must not be negative"}
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			rec, txErr := tx.UpdateDietRecord(userID, func(r DietRecord) error {
				d, ok := r[date]
				if !ok {
					return domain.NotFoundError{Entity: EntityDietRecord, ID: date}
				}
				session := d.Session(slot)
				if index < 0 || index >= len(session.Ingredients) {
					return domain.NotFoundError{Entity: EntityMealEntry, ID: date + "/" + string(slot)}
				}
				session.Ingredients[index].AmountGrams = grams
				r[date] = d
				return nil
			})
			if txErr != nil {
				return txErr
			}
			day = rec[date]
			return nil
		})
	})
	return day, res, err
}

// SetAllergyReaction flags or clears the allergy marker on an inventory item.
func (s *Service) SetAllergyReaction(ctx context.Context, userID, ingredientID string, reacted bool) (InventoryItem, Result, error) {
	var updated InventoryItem
	res, err := s.observe(ctx, "set_allergy_reaction", EntityInventory, ingredientID, ActionUpdate, func(ctx context.Context) (Result, error) {
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, txErr := tx.UpdateInventory(userID, func(inv Inventory) error {
				item, ok := inv[ingredientID]
				if !ok {
					return domain.NotFoundError{Entity: EntityInventory, ID: ingredientID}
				}
				item.AllergyReacted = reacted
				inv[ingredientID] = item
				updated = item
				return nil
			})
			return txErr
		})
	})
	return updated, res, err
}

// MarkMealConsumed sets the consumed flag on a meal session, materialising
// the day on first use.
func (s *Service) MarkMealConsumed(ctx context.Context, userID, date string, slot MealSlot, consumed bool) (MealSession, Result, error) {
	var session MealSession
	res, err := s.observe(ctx, "mark_meal_consumed", EntityDietRecord, date, ActionUpdate, func(ctx context.Context) (Result, error) {
		if err := validateDate(date); err != nil {
			return Result{}, err
		}
		if err := validateSlot(slot); err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			rec, txErr := tx.UpdateDietRecord(userID, func(r DietRecord) error {
				d := r[date]
				d.Session(slot).Consumed = consumed
				r[date] = d
				return nil
			})
			if txErr != nil {
				return txErr
			}
			d := rec[date]
			session = *d.Session(slot)
			return nil
		})
	})
	return session, res, err
}
