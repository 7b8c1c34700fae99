package domain

import (
	"fmt"
	"strconv"
)

func quote(s string) string { return strconv.Quote(s) }

// InvalidIngredientError reports an ingredient id that is not in the catalog.
// This is a caller bug, not recoverable by retry.
type InvalidIngredientError struct {
	IngredientID string
}

func (e InvalidIngredientError) Error() string {
	return fmt.Sprintf("ingredient %q not in catalog", e.IngredientID)
}

// InsufficientStockError reports an attempted deduction from an absent or
// empty inventory item. An expected business-rule rejection, surfaced to the
// end user as a message.
type InsufficientStockError struct {
	IngredientID string
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for ingredient %q", e.IngredientID)
}

// MealFullError reports an attempt to add an entry to a session that already
// holds the maximum number of ingredients.
type MealFullError struct {
	Date string
	Slot MealSlot
}

func (e MealFullError) Error() string {
	return fmt.Sprintf("meal %s/%s already has %d ingredients", e.Date, e.Slot, MaxMealIngredients)
}

// NotFoundError reports a stale date or index reference; the caller should
// reload state.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidDateError reports a date key that is not a valid YYYY-MM-DD value.
type InvalidDateError struct {
	Date string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date key %q, want YYYY-MM-DD", e.Date)
}

// InvalidFormatError rejects a malformed backup document wholesale.
type InvalidFormatError struct {
	Reason string
}

func (e InvalidFormatError) Error() string {
	return "invalid backup format: " + e.Reason
}

// StorageFaultError wraps a failure of the underlying persistence medium.
// It is the only condition treated as exceptional; callers may retry manually.
type StorageFaultError struct {
	Op  string
	Err error
}

func (e StorageFaultError) Error() string {
	return fmt.Sprintf("storage fault during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying backend error.
func (e StorageFaultError) Unwrap() error { return e.Err }
