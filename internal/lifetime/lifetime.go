package lifetime

import (
	"sort"

	"github.com/paiml/decy-sub003/internal/hir"
)

// VariableLifetime records where a local lives and whether it leaves the
// function through a return.
type VariableLifetime struct {
	Name       string
	DeclaredIn ScopeID
	Escapes    bool
}

// TrackLifetimes creates one record per declared local. When a name is
// declared in several scopes the first declaration in scope order wins.
// A variable escapes when it is read anywhere in a return expression, at
// any nesting depth. A nil tree yields no records.
func TrackLifetimes(fn *hir.Func, tree *ScopeTree) map[string]VariableLifetime {
	out := make(map[string]VariableLifetime)
	if tree == nil {
		return out
	}
	for _, s := range tree.scopes {
		for _, name := range s.Variables {
			if _, seen := out[name]; !seen {
				out[name] = VariableLifetime{Name: name, DeclaredIn: s.ID}
			}
		}
	}
	if fn == nil {
		return out
	}

	hir.WalkStmts(fn.Stmts(), func(s *hir.Stmt) {
		ret, ok := s.Data.(hir.ReturnData)
		if !ok {
			return
		}
		hir.WalkExpr(ret.Value, func(e *hir.Expr) bool {
			if name, isVar := e.VarName(); isVar {
				if lt, tracked := out[name]; tracked {
					lt.Escapes = true
					out[name] = lt
				}
			}
			return true
		})
	})
	return out
}

// DetectDanglingPointers returns, sorted, the locals that escape while
// declared in a nested scope.
func DetectDanglingPointers(lifetimes map[string]VariableLifetime) []string {
	var out []string
	for name, lt := range lifetimes {
		if lt.Escapes && lt.DeclaredIn != RootScope {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Relation describes how two locals' scopes relate.
type Relation uint8

const (
	// Outlives means the pair's First variable lives in a scope strictly
	// enclosing Second's.
	Outlives Relation = iota + 1
	// Independent means neither scope encloses the other.
	Independent
)

func (r Relation) String() string {
	switch r {
	case Outlives:
		return "outlives"
	case Independent:
		return "independent"
	default:
		return "unknown"
	}
}

// Pair keys a relation. For Outlives, First is the longer-lived variable;
// for Independent the names are in sorted order.
type Pair struct {
	First  string
	Second string
}

// Relations maps variable pairs to their relation. Pairs declared in the
// same scope are absent.
type Relations map[Pair]Relation

// Between looks up the relation of a and b in either orientation and
// returns the key it is stored under.
func (r Relations) Between(a, b string) (Pair, Relation, bool) {
	if rel, ok := r[Pair{First: a, Second: b}]; ok {
		return Pair{First: a, Second: b}, rel, true
	}
	if rel, ok := r[Pair{First: b, Second: a}]; ok {
		return Pair{First: b, Second: a}, rel, true
	}
	return Pair{}, 0, false
}

// Sorted returns the keys ordered by First then Second.
func (r Relations) Sorted() []Pair {
	keys := make([]Pair, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].First != keys[j].First {
			return keys[i].First < keys[j].First
		}
		return keys[i].Second < keys[j].Second
	})
	return keys
}

// InferRelationships relates every pair of tracked locals by scope nesting.
// Without a tree nothing can be related and the result is empty.
func InferRelationships(lifetimes map[string]VariableLifetime, tree *ScopeTree) Relations {
	if tree == nil {
		return make(Relations)
	}
	names := make([]string, 0, len(lifetimes))
	for name := range lifetimes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Relations)
	for i, a := range names {
		sa := lifetimes[a].DeclaredIn
		for _, b := range names[i+1:] {
			sb := lifetimes[b].DeclaredIn
			switch {
			case sa == sb:
				// same scope, no ordering
			case tree.IsAncestor(sa, sb):
				out[Pair{First: a, Second: b}] = Outlives
			case tree.IsAncestor(sb, sa):
				out[Pair{First: b, Second: a}] = Outlives
			default:
				out[Pair{First: a, Second: b}] = Independent
			}
		}
	}
	return out
}
