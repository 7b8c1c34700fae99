package core

import (
	"context"
	"fmt"
)

// StockNonNegativeRule blocks any commit that would leave an inventory item
// with a negative count. The ledger operations reject such deductions up
// front; this rule backstops them at the transaction boundary.
type StockNonNegativeRule struct{}

// Name identifies the rule in violation reports.
func (StockNonNegativeRule) Name() string { return "stock_nonnegative" }

// Evaluate inspects post-mutation inventories touched by the transaction.
func (StockNonNegativeRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	seen := map[string]bool{}
	for _, change := range changes {
		if change.Entity != EntityInventory || seen[change.UserID] {
			continue
		}
		seen[change.UserID] = true
		inv, ok := view.FindInventory(change.UserID)
		if !ok {
			continue
		}
		for id, item := range inv {
			if item.Count < 0 {
				result.Violations = append(result.Violations, Violation{
					Rule:     "stock_nonnegative",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("inventory item %s has negative count %d", id, item.Count),
					Entity:   EntityInventory,
					EntityID: id,
				})
			}
		}
	}
	return result, nil
}
