// Package dataflow computes per-variable facts about a single HIR function:
// where a pointer comes from, whether anything writes through it, and whether
// it is really an array in disguise.
//
// The analysis is one forward pass over the statement tree. There is no
// fixed-point iteration and no alias tracking; a fact observed anywhere in
// the body holds for the whole function.
package dataflow

import (
	"sort"

	"github.com/paiml/decy-sub003/internal/hir"
)

// NodeKind classifies where a tracked variable's value comes from.
type NodeKind uint8

const (
	// NodeUninitialized is a declaration without an initializer.
	NodeUninitialized NodeKind = iota
	// NodeParameter is a function parameter.
	NodeParameter
	// NodeAllocation is initialized from malloc, calloc or realloc.
	NodeAllocation
	// NodeArrayAllocation is a heap buffer sized as `n * sizeof(T)`.
	NodeArrayAllocation
	// NodeStackArray is a fixed-size local array.
	NodeStackArray
	// NodeAssignment is initialized from some other expression.
	NodeAssignment
)

func (k NodeKind) String() string {
	switch k {
	case NodeUninitialized:
		return "uninitialized"
	case NodeParameter:
		return "parameter"
	case NodeAllocation:
		return "allocation"
	case NodeArrayAllocation:
		return "array-allocation"
	case NodeStackArray:
		return "stack-array"
	case NodeAssignment:
		return "assignment"
	default:
		return "unknown"
	}
}

// IsArray reports whether the node denotes array storage.
func (k NodeKind) IsArray() bool {
	return k == NodeStackArray || k == NodeArrayAllocation
}

// Var holds the facts recorded for one tracked variable.
type Var struct {
	Name      string
	Type      hir.Type
	Kind      NodeKind
	Init      *hir.Expr
	ArrayBase string // empty when not derived from an array
	BaseIndex int64
	Deps      []string
}

// IsParam reports whether v is a function parameter.
func (v *Var) IsParam() bool { return v.Kind == NodeParameter }

// Graph is the result of Analyze. It is immutable once built.
type Graph struct {
	fn      *hir.Func
	vars    map[string]*Var
	written map[string]bool
	indexed map[string]bool
	arith   map[string]bool
	moved   map[string]bool
	freed   map[string]bool
}

// Func returns the analyzed function.
func (g *Graph) Func() *hir.Func { return g.fn }

// Variables returns the tracked variable names in sorted order.
func (g *Graph) Variables() []string {
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the facts for a tracked variable.
func (g *Graph) Lookup(name string) (*Var, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// IsTracked reports whether name is a tracked variable.
func (g *Graph) IsTracked(name string) bool {
	_, ok := g.vars[name]
	return ok
}

// IsParameter reports whether name is a tracked parameter.
func (g *Graph) IsParameter(name string) bool {
	v, ok := g.vars[name]
	return ok && v.IsParam()
}

// TypeOf returns the declared type of a tracked variable.
func (g *Graph) TypeOf(name string) (hir.Type, bool) {
	v, ok := g.vars[name]
	if !ok {
		return hir.Type{}, false
	}
	return v.Type, true
}

// NodeKindOf returns the origin of a tracked variable.
func (g *Graph) NodeKindOf(name string) NodeKind {
	if v, ok := g.vars[name]; ok {
		return v.Kind
	}
	return NodeUninitialized
}

// IsModified reports whether any statement assigns name directly or writes
// through it (`*name = …`, `name[i] = …`, `name->f = …`, `name++`).
// Unknown names are never modified.
func (g *Graph) IsModified(name string) bool { return g.written[name] }

// IsIndexed reports whether name is used as the base of an index expression.
func (g *Graph) IsIndexed(name string) bool { return g.indexed[name] }

// HasPointerArithmetic reports whether name takes part in `+`/`-` or `++`/`--`.
func (g *Graph) HasPointerArithmetic(name string) bool { return g.arith[name] }

// IsReassigned reports whether name itself is given a new value after its
// declaration (`name = …`, `name++`). For a pointer this means it walks or
// is re-pointed rather than staying anchored where it started.
func (g *Graph) IsReassigned(name string) bool { return g.moved[name] }

// IsFreed reports whether name is passed to free.
func (g *Graph) IsFreed(name string) bool { return g.freed[name] }

// ArrayBaseFor returns the array a pointer was initialized from.
func (g *Graph) ArrayBaseFor(name string) (string, bool) {
	v, ok := g.vars[name]
	if !ok || v.ArrayBase == "" {
		return "", false
	}
	return v.ArrayBase, true
}

// ArrayBaseIndex returns the element offset a derived pointer starts at
// (2 for `int *p = &arr[2]`), or 0.
func (g *Graph) ArrayBaseIndex(name string) int64 {
	if v, ok := g.vars[name]; ok {
		return v.BaseIndex
	}
	return 0
}

// ArrayElemType returns the element type of a tracked array or array-derived pointer.
func (g *Graph) ArrayElemType(name string) (hir.Type, bool) {
	v, ok := g.vars[name]
	if !ok {
		return hir.Type{}, false
	}
	if v.ArrayBase != "" {
		return g.ArrayElemType(v.ArrayBase)
	}
	switch v.Kind {
	case NodeStackArray, NodeArrayAllocation:
		return v.Type.Pointee(), true
	}
	return hir.Type{}, false
}

// Dependencies returns the sorted names that flow into name.
func (g *Graph) Dependencies(name string) []string {
	v, ok := g.vars[name]
	if !ok {
		return nil
	}
	return v.Deps
}
