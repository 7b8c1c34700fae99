package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Update methods materialise an empty
// record when nothing is stored for the user yet, so a missing record never
// fails a read-modify-write.
type Transaction interface {
	Snapshot() RuleView
	PutProfile(UserProfile) (UserProfile, error)
	UpdateProfile(id string, mutator func(*UserProfile) error) (UserProfile, error)
	UpdateInventory(userID string, mutator func(Inventory) error) (Inventory, error)
	UpdateDietRecord(userID string, mutator func(DietRecord) error) (DietRecord, error)
	PutInventory(userID string, inv Inventory) error
	PutDietRecord(userID string, rec DietRecord) error
	SetCurrentUserID(id string)
	FindProfile(id string) (UserProfile, bool)
}

// PersistentStore is a minimal abstraction over durable backends. Committed
// reads return structurally-empty defaults when nothing is stored; only
// writes can surface a StorageFaultError.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(RuleView) error) error
	GetProfile(id string) (UserProfile, bool)
	GetInventory(userID string) Inventory
	GetDietRecord(userID string) DietRecord
	ListProfiles() []UserProfile
	CurrentUserID() (string, bool)
}
