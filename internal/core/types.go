package core

import "cubenote/pkg/domain"

type (
	EntityType         = domain.EntityType
	IngredientCategory = domain.IngredientCategory
	Theme              = domain.Theme
	MealSlot           = domain.MealSlot
	Severity           = domain.Severity
	Ingredient         = domain.Ingredient
	UserProfile        = domain.UserProfile
	InventoryItem      = domain.InventoryItem
	Inventory          = domain.Inventory
	MealIngredient     = domain.MealIngredient
	MealSession        = domain.MealSession
	DayRecord          = domain.DayRecord
	DietRecord         = domain.DietRecord
	BackupDocument     = domain.BackupDocument
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	PersistentStore    = domain.PersistentStore
)

const (
	EntityProfile    = domain.EntityProfile
	EntityInventory  = domain.EntityInventory
	EntityDietRecord = domain.EntityDietRecord
	EntityMealEntry  = domain.EntityMealEntry
	EntitySession    = domain.EntitySession
)

const (
	SlotBreakfast = domain.SlotBreakfast
	SlotLunch     = domain.SlotLunch
	SlotDinner    = domain.SlotDinner
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate  = domain.ActionCreate
	ActionUpdate  = domain.ActionUpdate
	ActionReplace = domain.ActionReplace
)

const MaxMealIngredients = domain.MaxMealIngredients

// NewRulesEngine re-exports the domain constructor for callers wiring services.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
