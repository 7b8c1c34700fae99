package core

import (
	"context"
	"fmt"

	"cubenote/pkg/domain"
)

// MealCapacityRule blocks any commit that would leave a meal session with
// more than the maximum number of ingredient entries. A session at exactly
// the maximum is legal and only noted at log severity.
type MealCapacityRule struct{}

// Name identifies the rule in violation reports.
func (MealCapacityRule) Name() string { return "meal_capacity" }

// Evaluate inspects post-mutation diet records touched by the transaction.
func (MealCapacityRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	seen := map[string]bool{}
	for _, change := range changes {
		if (change.Entity != EntityDietRecord && change.Entity != EntityMealEntry) || seen[change.UserID] {
			continue
		}
		seen[change.UserID] = true
		rec, ok := view.FindDietRecord(change.UserID)
		if !ok {
			continue
		}
		for date, day := range rec {
			for _, slot := range domain.MealSlots() {
				session := day.Session(slot)
				switch {
				case len(session.Ingredients) > MaxMealIngredients:
					result.Violations = append(result.Violations, Violation{
						Rule:     "meal_capacity",
						Severity: SeverityBlock,
						Message:  fmt.Sprintf("meal %s/%s holds %d ingredients, capacity is %d", date, slot, len(session.Ingredients), MaxMealIngredients),
						Entity:   EntityDietRecord,
						EntityID: date,
					})
				case len(session.Ingredients) == MaxMealIngredients:
					result.Violations = append(result.Violations, Violation{
						Rule:     "meal_capacity",
						Severity: SeverityLog,
						Message:  fmt.Sprintf("meal %s/%s is at capacity (%d ingredients)", date, slot, MaxMealIngredients),
						Entity:   EntityDietRecord,
						EntityID: date,
					})
				}
			}
		}
	}
	return result, nil
}
