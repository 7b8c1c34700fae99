package core

import (
	"context"
	"fmt"

	"cubenote/pkg/catalog"
	"cubenote/pkg/domain"
)

// CatalogReferenceRule warns when stored state references an ingredient id
// that is no longer in the catalog. Imports and historical records tolerate
// unknown ids; this rule only surfaces them.
type CatalogReferenceRule struct{}

// Name identifies the rule in violation reports.
func (CatalogReferenceRule) Name() string { return "catalog_reference" }

// Evaluate scans post-mutation inventories and diet records for unknown ids.
func (CatalogReferenceRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	seen := map[string]bool{}
	for _, change := range changes {
		if seen[change.UserID] {
			continue
		}
		switch change.Entity {
		case EntityInventory, EntityDietRecord, EntityMealEntry:
		default:
			continue
		}
		seen[change.UserID] = true

		if inv, ok := view.FindInventory(change.UserID); ok {
			for id := range inv {
				if _, known := catalog.Lookup(id); !known {
					result.Violations = append(result.Violations, unknownIngredient(EntityInventory, id))
				}
			}
		}
		if rec, ok := view.FindDietRecord(change.UserID); ok {
			flagged := map[string]bool{}
			for _, day := range rec {
				for _, slot := range domain.MealSlots() {
					for _, entry := range day.Session(slot).Ingredients {
						if flagged[entry.IngredientID] {
							continue
						}
						if _, known := catalog.Lookup(entry.IngredientID); !known {
							flagged[entry.IngredientID] = true
							result.Violations = append(result.Violations, unknownIngredient(EntityMealEntry, entry.IngredientID))
						}
					}
				}
			}
		}
	}
	return result, nil
}

func unknownIngredient(entity EntityType, id string) Violation {
	return Violation{
		Rule:     "catalog_reference",
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("ingredient %s is not in the catalog", id),
		Entity:   entity,
		EntityID: id,
	}
}
