package domain

import (
	"context"
	"errors"
	"testing"
)

type stubView struct{}

func (stubView) ListProfiles() []UserProfile              { return nil }
func (stubView) FindProfile(string) (UserProfile, bool)   { return UserProfile{}, false }
func (stubView) FindInventory(string) (Inventory, bool)   { return nil, false }
func (stubView) FindDietRecord(string) (DietRecord, bool) { return nil, false }
func (stubView) CurrentUserID() (string, bool)            { return "", false }

type stubRule struct {
	name   string
	result Result
	err    error
}

func (r stubRule) Name() string { return r.name }
func (r stubRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.result, r.err
}

func TestRulesEngineAggregates(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "warns", result: Result{Violations: []Violation{{Rule: "warns", Severity: SeverityWarn}}}})
	engine.Register(stubRule{name: "blocks", result: Result{Violations: []Violation{{Rule: "blocks", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), stubView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || !res.HasBlocking() {
		t.Fatalf("expected both violations aggregated, got %+v", res)
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "fails", err: boom})
	engine.Register(stubRule{name: "never", result: Result{Violations: []Violation{{Rule: "never"}}}})

	res, err := engine.Evaluate(context.Background(), stubView{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected empty result on error, got %+v", res)
	}
}
