package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"cubenote/pkg/domain"
)

func TestNewStoreAppliesDDLAndLoadsSnapshot(t *testing.T) {
	db, conn := newStubDB()
	seedBucket(t, conn, "profiles", map[string]domain.UserProfile{
		"jiho": {ID: "jiho", Name: "Jiho", Theme: domain.ThemePastelBlue, CreatedAt: 42},
	})
	seedBucket(t, conn, "session", "jiho")

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	profile, ok := store.GetProfile("jiho")
	if !ok || profile.Theme != domain.ThemePastelBlue || profile.CreatedAt != 42 {
		t.Fatalf("snapshot not hydrated: %+v ok=%v", profile, ok)
	}
	if current, ok := store.CurrentUserID(); !ok || current != "jiho" {
		t.Fatalf("session bucket not hydrated: %q ok=%v", current, ok)
	}

	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.PutProfile(domain.UserProfile{ID: "jiho", Name: "Jiho", Theme: domain.ThemePastelPink, CreatedAt: 1}); err != nil {
			return err
		}
		if _, err := tx.UpdateInventory("jiho", func(inv domain.Inventory) error {
			inv["rice"] = domain.InventoryItem{Ingredient: domain.Ingredient{ID: "rice"}, Count: 2}
			return nil
		}); err != nil {
			return err
		}
		tx.SetCurrentUserID("jiho")
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var profiles map[string]domain.UserProfile
	decodeBucket(t, conn, "profiles", &profiles)
	if profiles["jiho"].Name != "Jiho" {
		t.Fatalf("profiles bucket not written: %+v", profiles)
	}
	var inventories map[string]domain.Inventory
	decodeBucket(t, conn, "inventories", &inventories)
	if inventories["jiho"]["rice"].Count != 2 {
		t.Fatalf("inventories bucket not written: %+v", inventories)
	}
	var current string
	decodeBucket(t, conn, "session", &current)
	if current != "jiho" {
		t.Fatalf("session bucket not written: %q", current)
	}

	// A second store over the same database sees the persisted state.
	reopened, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if inv := reopened.GetInventory("jiho"); inv["rice"].Count != 2 {
		t.Fatalf("reopened store missing state: %+v", inv)
	}
}

func TestBlockedTransactionDoesNotPersist(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	engine := domain.NewRulesEngine()
	engine.Register(blockEverythingRule{})
	store, err := NewStore("", engine)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	writesBefore := countStateWrites(conn)

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.PutProfile(domain.UserProfile{ID: "jiho", Name: "Jiho"})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if countStateWrites(conn) != writesBefore {
		t.Fatalf("blocked transaction must not touch the state table")
	}
}

func TestPersistFailureSurfacesStorageFault(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.PutProfile(domain.UserProfile{ID: "jiho", Name: "Jiho"})
		return err
	})
	var fault domain.StorageFaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected StorageFaultError, got %v", err)
	}
}

func TestCommitFailureSurfacesStorageFault(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failCommit = true

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.PutProfile(domain.UserProfile{ID: "jiho", Name: "Jiho"})
		return err
	})
	var fault domain.StorageFaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected StorageFaultError, got %v", err)
	}
}

func TestNewStoreFailsWhenOpenFails(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("refused")
	})
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err == nil {
		t.Fatalf("open failure must propagate")
	}
}

type blockEverythingRule struct{}

func (blockEverythingRule) Name() string { return "block_everything" }

func (blockEverythingRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_everything",
		Severity: domain.SeverityBlock,
		Message:  "rejected",
	}}}, nil
}

func seedBucket(t *testing.T, conn *stubConn, bucket string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s: %v", bucket, err)
	}
	conn.state[bucket] = data
}

func decodeBucket(t *testing.T, conn *stubConn, bucket string, target any) {
	t.Helper()
	data, ok := conn.state[bucket]
	if !ok {
		t.Fatalf("bucket %s not persisted, state has %v", bucket, bucketNames(conn))
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode %s: %v", bucket, err)
	}
}

func bucketNames(conn *stubConn) []string {
	names := make([]string, 0, len(conn.state))
	for name := range conn.state {
		names = append(names, name)
	}
	return names
}

func countStateWrites(conn *stubConn) int {
	writes := 0
	for _, stmt := range conn.execs {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "INSERT INTO STATE") {
			writes++
		}
	}
	return writes
}

// --- stub driver helpers ---

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// stubConn emulates just enough of a Postgres connection for the snapshot
// store: the state table upsert and the hydration select.
type stubConn struct {
	execs      []string
	state      map[string][]byte
	failExec   bool
	failCommit bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{state: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(_ context.Context) error { return nil }

func (c *stubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	return &stubTx{conn: c}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected bucket and payload, got %d args", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg is %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg is %T", args[1].Value)
		}
		c.state[bucket] = append([]byte(nil), payload...)
		return driver.RowsAffected(1), nil
	}
	return driver.RowsAffected(0), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "FROM STATE") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := make([][]driver.Value, 0, len(c.state))
	for bucket, payload := range c.state {
		rows = append(rows, []driver.Value{bucket, append([]byte(nil), payload...)})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: rows}, nil
}

type stubTx struct {
	conn *stubConn
}

func (t *stubTx) Commit() error {
	if t.conn.failCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}

func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
