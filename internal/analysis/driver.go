// Package analysis implements the lazy, cycle-detecting property driver
// of §4.5. Passes for name registration, name resolution, type
// checking, and IR generation are never run in a fixed order over the
// tree; instead every place that needs a fact about a node calls
// Driver.Require, which drives that node (and, transitively, whatever
// else it depends on) through exactly the prerequisite properties it
// is missing, in whatever order the calls happen to arrive.
package analysis

import (
	"fmt"
	"strings"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/trace"
)

// Step computes one property for node, assuming every earlier property
// in Order already holds. A step is free to call Driver.Require again,
// on this node or any other — that recursion, not a fixed pass
// ordering, is how forward references get resolved.
type Step func(d *Driver, node ast.Index) error

// Order is the dependency chain a require_property call drives
// through: requiring a later property first requires every earlier
// one to hold.
var Order = [...]ast.PropKind{
	ast.PropNameRegisterSelf,
	ast.PropNameRegisterNested,
	ast.PropNameResolve,
	ast.PropType,
	ast.PropIRGen,
}

var propState = map[ast.PropKind]ast.AnalysisState{
	ast.PropNameRegisterSelf:   ast.StateNameRegisterSelfDone,
	ast.PropNameRegisterNested: ast.StateNameRegisterNestedDone,
	ast.PropNameResolve:        ast.StateNameResolveDone,
	ast.PropType:               ast.StateTypeCheckDone,
	ast.PropIRGen:              ast.StateIRGenDone,
}

func propName(p ast.PropKind) string {
	switch p {
	case ast.PropNameRegisterSelf:
		return "name_register_self"
	case ast.PropNameRegisterNested:
		return "name_register_nested"
	case ast.PropNameResolve:
		return "name_resolve"
	case ast.PropType:
		return "type_check"
	case ast.PropIRGen:
		return "ir_gen"
	default:
		return "?"
	}
}

func propIndex(p ast.PropKind) int {
	for i, o := range Order {
		if o == p {
			return i
		}
	}
	panic("analysis: unknown PropKind")
}

// Registry binds each property to the Step that computes it. The
// driver itself has no opinion on what a pass does — internal/symbols
// registers the name-registration/resolution steps, internal/sema
// registers type checking, internal/irgen registers IR generation.
type Registry struct {
	steps [len(Order)]Step
}

// Register binds step as the computation for prop. Panics if prop
// already has a registered step — wiring is meant to happen once, at
// startup, not be silently overridden.
func (r *Registry) Register(prop ast.PropKind, step Step) {
	i := propIndex(prop)
	if r.steps[i] != nil {
		panic("analysis: " + propName(prop) + " already registered")
	}
	r.steps[i] = step
}

type stackEntry struct {
	node ast.Index
	prop ast.PropKind
}

// Driver holds the in-progress (node, property) stack that is the sole
// guard against cyclic forward references (§4.5's stated design: the
// driver never imposes an order, it only refuses to re-enter work
// that is already in flight).
type Driver struct {
	Store    *ast.Store
	Registry *Registry
	Reporter diag.Reporter

	// Tracer receives a span around every require_property step this
	// Driver runs. Nil (the default) costs nothing: trace.Begin treats
	// a nil Tracer the same as trace.Nop.
	Tracer trace.Tracer

	stack []stackEntry
}

func NewDriver(store *ast.Store, registry *Registry, reporter diag.Reporter) *Driver {
	return &Driver{Store: store, Registry: registry, Reporter: reporter}
}

// Require drives node through prop (and every property prop depends
// on) if it has not already been satisfied. A cycle — node already
// mid-calculation for prop somewhere up the current call stack —
// reports diag.CyclePropertyDependency naming the path and returns an
// error instead of recursing forever.
func (d *Driver) Require(node ast.Index, prop ast.PropKind) error {
	h := d.Store.Header(node)
	want := propState[prop]
	if h.State.AtLeast(want) {
		return nil
	}
	switch h.Props.Get(prop) {
	case ast.Calculated:
		h.Advance(want)
		return nil
	case ast.Calculating:
		return d.cycleError(node, prop)
	}

	idx := propIndex(prop)
	for _, earlier := range Order[:idx] {
		if err := d.Require(node, earlier); err != nil {
			return err
		}
	}

	h.Props = h.Props.Set(prop, ast.Calculating)
	d.stack = append(d.stack, stackEntry{node: node, prop: prop})

	span := trace.Begin(d.Tracer, trace.ScopePass, propName(prop), 0).WithExtra("node", node.String())
	var err error
	if step := d.Registry.steps[idx]; step != nil {
		err = step(d, node)
	}
	if err != nil {
		span.End("error")
	} else {
		span.End("")
	}

	d.stack = d.stack[:len(d.stack)-1]
	if err != nil {
		h.Flags |= ast.FlagErrorNode
	}
	// A node that failed a property is still marked calculated: it
	// stays poisoned (FlagErrorNode) rather than re-running, and
	// re-reporting, the same failing step for every later caller that
	// needs the same property.
	h.Props = h.Props.Set(prop, ast.Calculated)
	h.Advance(want)
	return err
}

// RequireState drives node up to the coarse lifecycle stage want,
// running every property step in between. Passes that only care about
// "has this node been resolved yet", not the specific property name,
// use this form (§3's per-node AnalysisState).
func (d *Driver) RequireState(node ast.Index, want ast.AnalysisState) error {
	for _, prop := range Order {
		if propState[prop] > want {
			break
		}
		if err := d.Require(node, prop); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) cycleError(node ast.Index, prop ast.PropKind) error {
	start := 0
	for i, e := range d.stack {
		if e.node == node && e.prop == prop {
			start = i
			break
		}
	}
	var b strings.Builder
	b.WriteString("cyclic dependency: ")
	for i, e := range d.stack[start:] {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "%s(%s)", propName(e.prop), e.node)
	}
	fmt.Fprintf(&b, " -> %s(%s)", propName(prop), node)
	msg := b.String()
	sp := d.Store.Header(node).Span
	if rb := diag.ReportError(d.Reporter, diag.CyclePropertyDependency, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
