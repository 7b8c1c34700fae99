// Package memory provides the in-memory transactional store that the durable
// backends build upon. Transactions run against a deep copy of the state and
// commit only when no registered rule reports a blocking violation.
package memory

import (
	"context"
	"sync"

	"cubenote/pkg/domain"
)

// Exported aliases to keep method signatures concise while still exposing
// domain types from this infra package.
type (
	// UserProfile is an alias of domain.UserProfile.
	UserProfile = domain.UserProfile
	// Inventory is an alias of domain.Inventory.
	Inventory = domain.Inventory
	// DietRecord is an alias of domain.DietRecord.
	DietRecord = domain.DietRecord
	// Change is an alias of domain.Change.
	Change = domain.Change
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// RuleView is an alias of domain.RuleView.
	RuleView = domain.RuleView
	// PersistentStore is an alias of domain.PersistentStore.
	PersistentStore = domain.PersistentStore
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	profiles    map[string]UserProfile
	inventories map[string]Inventory
	diets       map[string]DietRecord
	currentUser string
}

// Snapshot is the serialisable representation of the in-memory state.
type Snapshot struct {
	Profiles    map[string]UserProfile `json:"profiles"`
	Inventories map[string]Inventory   `json:"inventories"`
	Diets       map[string]DietRecord  `json:"diets"`
	CurrentUser string                 `json:"currentUser"`
}

func newMemoryState() memoryState {
	return memoryState{
		profiles:    map[string]UserProfile{},
		inventories: map[string]Inventory{},
		diets:       map[string]DietRecord{},
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Profiles:    make(map[string]UserProfile, len(state.profiles)),
		Inventories: make(map[string]Inventory, len(state.inventories)),
		Diets:       make(map[string]DietRecord, len(state.diets)),
		CurrentUser: state.currentUser,
	}
	for k, v := range state.profiles {
		s.Profiles[k] = v
	}
	for k, v := range state.inventories {
		s.Inventories[k] = v.Clone()
	}
	for k, v := range state.diets {
		s.Diets[k] = v.Clone()
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	st := newMemoryState()
	for k, v := range s.Profiles {
		st.profiles[k] = v
	}
	for k, v := range s.Inventories {
		st.inventories[k] = v.Clone()
	}
	for k, v := range s.Diets {
		st.diets[k] = v.Clone()
	}
	st.currentUser = s.CurrentUser
	return st
}

func (s memoryState) clone() memoryState { return memoryStateFromSnapshot(snapshotFromMemoryState(s)) }

// Store provides an in-memory transactional store for the cubenote domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{state: newMemoryState(), engine: engine}
}

// ExportState returns a deep snapshot of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the committed state with the given snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine returns the engine evaluated at commit time.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

type transaction struct {
	state   memoryState
	changes []Change
}

type ruleView struct{ state *memoryState }

func newRuleView(state *memoryState) RuleView { return ruleView{state: state} }

// ListProfiles returns all profiles within the snapshot.
func (v ruleView) ListProfiles() []UserProfile {
	out := make([]UserProfile, 0, len(v.state.profiles))
	for _, p := range v.state.profiles {
		out = append(out, p)
	}
	return out
}

// FindProfile retrieves a profile by id from the snapshot.
func (v ruleView) FindProfile(id string) (UserProfile, bool) {
	p, ok := v.state.profiles[id]
	return p, ok
}

// FindInventory retrieves a user's inventory from the snapshot.
func (v ruleView) FindInventory(userID string) (Inventory, bool) {
	inv, ok := v.state.inventories[userID]
	if !ok {
		return nil, false
	}
	return inv.Clone(), true
}

// FindDietRecord retrieves a user's diet record from the snapshot.
func (v ruleView) FindDietRecord(userID string) (DietRecord, bool) {
	rec, ok := v.state.diets[userID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// CurrentUserID returns the session pointer within the snapshot.
func (v ruleView) CurrentUserID() (string, bool) {
	return v.state.currentUser, v.state.currentUser != ""
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newRuleView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(RuleView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newRuleView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state to callers needing reads mid-transaction.
func (tx *transaction) Snapshot() RuleView { return newRuleView(&tx.state) }

// PutProfile stores or replaces a profile within the transaction.
func (tx *transaction) PutProfile(p UserProfile) (UserProfile, error) {
	if p.ID == "" {
		return UserProfile{}, domain.InvalidFormatError{Reason: "profile id must not be empty"}
	}
	action := domain.ActionCreate
	var before any
	if prev, ok := tx.state.profiles[p.ID]; ok {
		action = domain.ActionUpdate
		before = prev
	}
	tx.state.profiles[p.ID] = p
	tx.recordChange(Change{Entity: domain.EntityProfile, Action: action, UserID: p.ID, Before: before, After: p})
	return p, nil
}

// UpdateProfile mutates an existing profile using the provided mutator.
func (tx *transaction) UpdateProfile(id string, mutator func(*UserProfile) error) (UserProfile, error) {
	current, ok := tx.state.profiles[id]
	if !ok {
		return UserProfile{}, domain.NotFoundError{Entity: domain.EntityProfile, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return UserProfile{}, err
	}
	current.ID = id
	tx.state.profiles[id] = current
	tx.recordChange(Change{Entity: domain.EntityProfile, Action: domain.ActionUpdate, UserID: id, Before: before, After: current})
	return current, nil
}

// UpdateInventory mutates a user's inventory, materialising an empty one when
// nothing is stored yet.
func (tx *transaction) UpdateInventory(userID string, mutator func(Inventory) error) (Inventory, error) {
	before := tx.state.inventories[userID].Clone()
	current := tx.state.inventories[userID].Clone()
	if err := mutator(current); err != nil {
		return nil, err
	}
	tx.state.inventories[userID] = current
	tx.recordChange(Change{Entity: domain.EntityInventory, Action: domain.ActionUpdate, UserID: userID, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// UpdateDietRecord mutates a user's diet record, materialising an empty one
// when nothing is stored yet.
func (tx *transaction) UpdateDietRecord(userID string, mutator func(DietRecord) error) (DietRecord, error) {
	before := tx.state.diets[userID].Clone()
	current := tx.state.diets[userID].Clone()
	if err := mutator(current); err != nil {
		return nil, err
	}
	tx.state.diets[userID] = current
	tx.recordChange(Change{Entity: domain.EntityDietRecord, Action: domain.ActionUpdate, UserID: userID, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// PutInventory replaces a user's inventory wholesale.
func (tx *transaction) PutInventory(userID string, inv Inventory) error {
	before := tx.state.inventories[userID].Clone()
	tx.state.inventories[userID] = inv.Clone()
	tx.recordChange(Change{Entity: domain.EntityInventory, Action: domain.ActionReplace, UserID: userID, Before: before, After: inv.Clone()})
	return nil
}

// PutDietRecord replaces a user's diet record wholesale.
func (tx *transaction) PutDietRecord(userID string, rec DietRecord) error {
	before := tx.state.diets[userID].Clone()
	tx.state.diets[userID] = rec.Clone()
	tx.recordChange(Change{Entity: domain.EntityDietRecord, Action: domain.ActionReplace, UserID: userID, Before: before, After: rec.Clone()})
	return nil
}

// SetCurrentUserID updates the persisted session pointer.
func (tx *transaction) SetCurrentUserID(id string) {
	before := tx.state.currentUser
	tx.state.currentUser = id
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionUpdate, UserID: id, Before: before, After: id})
}

// FindProfile retrieves a profile from the transactional state.
func (tx *transaction) FindProfile(id string) (UserProfile, bool) {
	p, ok := tx.state.profiles[id]
	return p, ok
}

// Read helpers ---------------------------------------------------------------

// GetProfile retrieves a profile by id from committed state.
func (s *Store) GetProfile(id string) (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.profiles[id]
	return p, ok
}

// GetInventory returns a user's committed inventory, empty when absent.
func (s *Store) GetInventory(userID string) Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.inventories[userID].Clone()
}

// GetDietRecord returns a user's committed diet record, empty when absent.
func (s *Store) GetDietRecord(userID string) DietRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.diets[userID].Clone()
}

// ListProfiles returns all committed profiles.
func (s *Store) ListProfiles() []UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UserProfile, 0, len(s.state.profiles))
	for _, p := range s.state.profiles {
		out = append(out, p)
	}
	return out
}

// CurrentUserID returns the committed session pointer.
func (s *Store) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.currentUser, s.state.currentUser != ""
}
