// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by cubenote.
package domain

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProfile identifies a user profile record.
	EntityProfile EntityType = "profile"
	// EntityInventory identifies a per-user inventory record.
	EntityInventory EntityType = "inventory"
	// EntityDietRecord identifies a per-user diet record.
	EntityDietRecord EntityType = "diet_record"
	// EntityMealEntry identifies a single ingredient entry inside a meal session.
	EntityMealEntry EntityType = "meal_entry"
	// EntitySession identifies the process-wide current-user pointer.
	EntitySession EntityType = "session"
)

// IngredientCategory groups catalog ingredients for presentation.
type IngredientCategory string

// Catalog ingredient categories, matching the persisted wire values.
const (
	CategoryGrain  IngredientCategory = "grain"
	CategoryVeggie IngredientCategory = "veggie"
	CategoryMeat   IngredientCategory = "meat"
	CategoryFruit  IngredientCategory = "fruit"
	CategoryDairy  IngredientCategory = "dairy"
)

// Theme selects the presentation theme stored on a profile.
type Theme string

// Supported profile themes. ThemePastelPink is the default for new profiles.
const (
	ThemePastelPink   Theme = "pastel-pink"
	ThemePastelBlue   Theme = "pastel-blue"
	ThemePastelYellow Theme = "pastel-yellow"
)

// MealSlot names one of the three meals of a day record.
type MealSlot string

// The three meal slots of a day record.
const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// MealSlots lists all slots in presentation order.
func MealSlots() []MealSlot { return []MealSlot{SlotBreakfast, SlotLunch, SlotDinner} }

// Valid reports whether the slot is one of breakfast, lunch or dinner.
func (s MealSlot) Valid() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return true
	}
	return false
}

// MaxMealIngredients caps the number of ingredient entries per meal session.
const MaxMealIngredients = 10

// BackupVersion is the only backup document version accepted by import.
const BackupVersion = "1.0"

// Ingredient is the static catalog descriptor for one ingredient.
type Ingredient struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	NameKo   string             `json:"nameKo"`
	Category IngredientCategory `json:"category"`
}

// UserProfile identifies one tracked infant profile. CreatedAt is epoch millis.
type UserProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Theme     Theme  `json:"theme"`
	CreatedAt int64  `json:"createdAt"`
}

// InventoryItem tracks the cube stock held for one catalog ingredient.
// Count is never negative; a zero-count item stays in storage but is
// excluded from selection.
type InventoryItem struct {
	Ingredient
	Count          int  `json:"count"`
	AllergyReacted bool `json:"allergyReacted"`
}

// Inventory maps ingredient id to the stock held for it.
type Inventory map[string]InventoryItem

// Clone returns a deep copy of the inventory.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return Inventory{}
	}
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// MealIngredient is one ingredient entry within a meal session. AmountGrams
// starts at zero and is set separately by the caller.
type MealIngredient struct {
	IngredientID string `json:"id"`
	AmountGrams  int    `json:"amount"`
}

// MealSession is the ordered ingredient list recorded for one meal slot.
// Duplicate ingredient ids are allowed; insertion order is preserved.
type MealSession struct {
	Ingredients []MealIngredient `json:"ingredients"`
	Consumed    bool             `json:"consumed"`
}

func cloneSession(s MealSession) MealSession {
	cp := s
	cp.Ingredients = append([]MealIngredient(nil), s.Ingredients...)
	return cp
}

// DayRecord holds the three meal sessions of one calendar date.
type DayRecord struct {
	Breakfast MealSession `json:"breakfast"`
	Lunch     MealSession `json:"lunch"`
	Dinner    MealSession `json:"dinner"`
}

// Session returns a pointer to the session for the given slot, or nil for an
// unknown slot.
func (d *DayRecord) Session(slot MealSlot) *MealSession {
	switch slot {
	case SlotBreakfast:
		return &d.Breakfast
	case SlotLunch:
		return &d.Lunch
	case SlotDinner:
		return &d.Dinner
	}
	return nil
}

func cloneDay(d DayRecord) DayRecord {
	return DayRecord{
		Breakfast: cloneSession(d.Breakfast),
		Lunch:     cloneSession(d.Lunch),
		Dinner:    cloneSession(d.Dinner),
	}
}

// DietRecord maps a YYYY-MM-DD date key to the day's meal sessions.
type DietRecord map[string]DayRecord

// Clone returns a deep copy of the diet record.
func (r DietRecord) Clone() DietRecord {
	if r == nil {
		return DietRecord{}
	}
	out := make(DietRecord, len(r))
	for k, v := range r {
		out[k] = cloneDay(v)
	}
	return out
}

// IngredientCount returns how many entries across all sessions reference the
// given ingredient id. Used by the conservation checks and tests.
func (r DietRecord) IngredientCount(ingredientID string) int {
	total := 0
	for _, day := range r {
		for _, session := range []MealSession{day.Breakfast, day.Lunch, day.Dinner} {
			for _, ing := range session.Ingredients {
				if ing.IngredientID == ingredientID {
					total++
				}
			}
		}
	}
	return total
}

// BackupDocument is the portable interchange format carrying a full user's
// state. Produced by export, consumed by import.
type BackupDocument struct {
	Version    string      `json:"version"`
	ExportedAt string      `json:"exportedAt"`
	Profile    UserProfile `json:"profile"`
	Inventory  Inventory   `json:"inventory,omitempty"`
	DietRecord DietRecord  `json:"dietRecord,omitempty"`
}

// Validate checks the structural requirements import relies on. Compatibility
// is only guaranteed for version 1.0; any other version, or a missing or
// malformed profile, rejects the whole document.
func (d BackupDocument) Validate() error {
	if d.Version != BackupVersion {
		return InvalidFormatError{Reason: "unsupported backup version " + quote(d.Version)}
	}
	if d.Profile.ID == "" {
		return InvalidFormatError{Reason: "backup profile missing or malformed"}
	}
	return nil
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	UserID string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for rule evaluation.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate Action = "update"
	// ActionReplace indicates a record was replaced wholesale (import).
	ActionReplace Action = "replace"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
