// Package lifetime models lexical scopes of a function body and flags locals
// whose value leaves the function from inside a nested block.
package lifetime

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/paiml/decy-sub003/internal/hir"
)

// ScopeID identifies a scope within one ScopeTree. The function body is 0.
type ScopeID uint32

// RootScope is the function body scope.
const RootScope ScopeID = 0

// ScopeKind records which construct opened a scope.
type ScopeKind uint8

const (
	ScopeFunction ScopeKind = iota
	ScopeThen
	ScopeElse
	ScopeLoop
	ScopeSwitch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "function"
	case ScopeThen:
		return "then"
	case ScopeElse:
		return "else"
	case ScopeLoop:
		return "loop"
	case ScopeSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// Scope is one node of the tree. Variables lists the names declared directly
// in this scope in declaration order, without duplicates.
type Scope struct {
	ID        ScopeID
	Parent    ScopeID
	HasParent bool
	Depth     int
	Kind      ScopeKind
	Variables []string
}

// ScopeTree is an ordered set of scopes; a scope's ID is its index.
type ScopeTree struct {
	scopes []Scope
}

// Len returns the number of scopes. A nil tree has none.
func (t *ScopeTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.scopes)
}

// Scope returns the scope with the given id.
func (t *ScopeTree) Scope(id ScopeID) (Scope, bool) {
	if t == nil || int(id) >= len(t.scopes) {
		return Scope{}, false
	}
	return t.scopes[id], true
}

// Scopes returns all scopes in id order.
func (t *ScopeTree) Scopes() []Scope {
	if t == nil {
		return nil
	}
	out := make([]Scope, len(t.scopes))
	copy(out, t.scopes)
	return out
}

// IsAncestor reports whether outer strictly encloses inner.
func (t *ScopeTree) IsAncestor(outer, inner ScopeID) bool {
	cur, ok := t.Scope(inner)
	for ok && cur.HasParent {
		if cur.Parent == outer {
			return true
		}
		cur, ok = t.Scope(cur.Parent)
	}
	return false
}

// ScopeOf returns the scope that first declares name.
func (t *ScopeTree) ScopeOf(name string) (ScopeID, bool) {
	if t == nil {
		return 0, false
	}
	for _, s := range t.scopes {
		for _, v := range s.Variables {
			if v == name {
				return s.ID, true
			}
		}
	}
	return 0, false
}

type treeBuilder struct {
	scopes []Scope
}

// BuildScopeTree derives the scope tree of fn. Then and else branches, loop
// bodies and switch bodies open child scopes; a for loop's init declaration
// belongs to its loop scope. Parameters are not recorded.
func BuildScopeTree(fn *hir.Func) *ScopeTree {
	b := &treeBuilder{}
	root := b.open(RootScope, false, ScopeFunction)
	if fn != nil {
		b.stmts(root, fn.Stmts())
	}
	return &ScopeTree{scopes: b.scopes}
}

func (b *treeBuilder) open(parent ScopeID, hasParent bool, kind ScopeKind) ScopeID {
	id, err := safecast.Conv[uint32](len(b.scopes))
	if err != nil {
		panic(fmt.Errorf("scope id overflow: %w", err))
	}
	depth := 0
	if hasParent {
		depth = b.scopes[parent].Depth + 1
	}
	b.scopes = append(b.scopes, Scope{
		ID:        ScopeID(id),
		Parent:    parent,
		HasParent: hasParent,
		Depth:     depth,
		Kind:      kind,
	})
	return ScopeID(id)
}

func (b *treeBuilder) declare(scope ScopeID, name string) {
	s := &b.scopes[scope]
	for _, v := range s.Variables {
		if v == name {
			return
		}
	}
	s.Variables = append(s.Variables, name)
}

func (b *treeBuilder) stmts(scope ScopeID, stmts []hir.Stmt) {
	for i := range stmts {
		b.stmt(scope, &stmts[i])
	}
}

func (b *treeBuilder) block(scope ScopeID, blk *hir.Block) {
	if blk != nil {
		b.stmts(scope, blk.Stmts)
	}
}

func (b *treeBuilder) stmt(scope ScopeID, s *hir.Stmt) {
	if s == nil {
		return
	}
	switch d := s.Data.(type) {
	case hir.VarDeclData:
		b.declare(scope, d.Name)
	case hir.IfData:
		then := b.open(scope, true, ScopeThen)
		b.block(then, d.Then)
		if d.Else != nil {
			els := b.open(scope, true, ScopeElse)
			b.block(els, d.Else)
		}
	case hir.WhileData:
		body := b.open(scope, true, ScopeLoop)
		b.block(body, d.Body)
	case hir.ForData:
		body := b.open(scope, true, ScopeLoop)
		b.stmt(body, d.Init)
		b.stmt(body, d.Post)
		b.block(body, d.Body)
	case hir.SwitchData:
		body := b.open(scope, true, ScopeSwitch)
		for _, c := range d.Cases {
			b.stmts(body, c.Body)
		}
		b.block(body, d.Default)
	}
}
