package analysis_test

import (
	"errors"
	"testing"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
)

func newVar(store *ast.Store) ast.Index {
	return store.AllocDecl(ast.Decl{Kind: ast.DeclVar})
}

func TestRequireRunsEachStepOnceInOrder(t *testing.T) {
	store := ast.NewStore()
	node := newVar(store)

	var ran []ast.PropKind
	reg := &analysis.Registry{}
	for _, prop := range analysis.Order {
		p := prop
		reg.Register(p, func(d *analysis.Driver, n ast.Index) error {
			ran = append(ran, p)
			return nil
		})
	}
	d := analysis.NewDriver(store, reg, nil)

	if err := d.Require(node, ast.PropType); err != nil {
		t.Fatalf("Require returned error: %v", err)
	}
	want := []ast.PropKind{ast.PropNameRegisterSelf, ast.PropNameRegisterNested, ast.PropNameResolve, ast.PropType}
	if len(ran) != len(want) {
		t.Fatalf("ran = %v, want %v", ran, want)
	}
	for i, p := range want {
		if ran[i] != p {
			t.Fatalf("ran[%d] = %v, want %v", i, ran[i], p)
		}
	}

	// A second Require for an already-satisfied (or earlier) property
	// must not re-run any step.
	ran = nil
	if err := d.Require(node, ast.PropNameResolve); err != nil {
		t.Fatalf("Require returned error: %v", err)
	}
	if len(ran) != 0 {
		t.Fatalf("expected no steps to re-run, got %v", ran)
	}

	if got := store.Header(node).State; got != ast.StateTypeCheckDone {
		t.Fatalf("State = %v, want StateTypeCheckDone", got)
	}
}

func TestRequireDetectsCycle(t *testing.T) {
	store := ast.NewStore()
	a := newVar(store)
	b := newVar(store)

	reg := &analysis.Registry{}
	reg.Register(ast.PropNameRegisterSelf, func(d *analysis.Driver, n ast.Index) error { return nil })
	reg.Register(ast.PropNameRegisterNested, func(d *analysis.Driver, n ast.Index) error { return nil })
	reg.Register(ast.PropNameResolve, func(d *analysis.Driver, n ast.Index) error {
		if n == a {
			return d.Require(b, ast.PropNameResolve)
		}
		return d.Require(a, ast.PropNameResolve)
	})

	bag := diag.NewBag(16)
	d := analysis.NewDriver(store, reg, diag.BagReporter{Bag: bag})

	err := d.Require(a, ast.PropNameResolve)
	if err == nil {
		t.Fatalf("expected a cycle error, got nil")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic to be reported")
	}
	found := false
	for _, diagItem := range bag.Items() {
		if diagItem.Code == diag.CyclePropertyDependency {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CyclePropertyDependency diagnostic, got %+v", bag.Items())
	}
}

func TestRequirePoisonsNodeOnFailure(t *testing.T) {
	store := ast.NewStore()
	node := newVar(store)

	calls := 0
	reg := &analysis.Registry{}
	reg.Register(ast.PropNameRegisterSelf, func(d *analysis.Driver, n ast.Index) error {
		calls++
		return errors.New("boom")
	})

	d := analysis.NewDriver(store, reg, nil)

	if err := d.Require(node, ast.PropNameRegisterSelf); err == nil {
		t.Fatalf("expected the failing step's error to propagate")
	}
	if err := d.Require(node, ast.PropNameRegisterSelf); err != nil {
		t.Fatalf("second Require should see the poisoned-but-calculated state and return nil, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("step ran %d times, want 1 (poisoned nodes must not re-run)", calls)
	}
	h := store.Header(node)
	if !h.Flags.Has(ast.FlagErrorNode) {
		t.Fatalf("expected FlagErrorNode to be set after a failed step")
	}
	if !h.State.AtLeast(ast.StateNameRegisterSelfDone) {
		t.Fatalf("expected State to advance even though the step failed")
	}
}

func TestRequireStateDrivesThroughIntermediateProperties(t *testing.T) {
	store := ast.NewStore()
	node := newVar(store)

	var ran []ast.PropKind
	reg := &analysis.Registry{}
	for _, prop := range analysis.Order {
		p := prop
		reg.Register(p, func(d *analysis.Driver, n ast.Index) error {
			ran = append(ran, p)
			return nil
		})
	}
	d := analysis.NewDriver(store, reg, nil)

	if err := d.RequireState(node, ast.StateNameResolveDone); err != nil {
		t.Fatalf("RequireState returned error: %v", err)
	}
	if len(ran) != 3 {
		t.Fatalf("ran = %v, want exactly the first 3 properties", ran)
	}
	if ran[2] != ast.PropNameResolve {
		t.Fatalf("last property run = %v, want PropNameResolve", ran[2])
	}
}
