package lifetime

import (
	"fmt"

	"github.com/paiml/decy-sub003/internal/hir"
)

// DefaultLifetime is the name given to the one lifetime parameter Annotate
// introduces.
const DefaultLifetime = "a"

// Annotation is the explicit lifetime a rewritten signature needs. A zero
// Annotation means elision already determines the result's lifetime.
type Annotation struct {
	Lifetime string
	// Params are the reference parameters the result borrows from, in
	// declaration order.
	Params []string
}

// Needed reports whether the signature must spell out a lifetime.
func (a Annotation) Needed() bool { return a.Lifetime != "" }

// Annotate decides whether fn's reference result needs an explicit lifetime.
// Elision covers a result when at most one parameter is a reference; with
// more, the result is tied to the reference parameters its returns name.
// When a return yields anything other than a reference parameter the result
// is tied to all of them.
func Annotate(fn *hir.Func) Annotation {
	if fn == nil || fn.Result.Kind != hir.TypeReference {
		return Annotation{}
	}
	var refs []string
	isRef := make(map[string]bool)
	for _, p := range fn.Params {
		if p.Type.Kind == hir.TypeReference {
			refs = append(refs, p.Name)
			isRef[p.Name] = true
		}
	}
	if len(refs) < 2 {
		return Annotation{}
	}

	returned := make(map[string]bool)
	precise := true
	hir.WalkStmts(fn.Stmts(), func(s *hir.Stmt) {
		ret, ok := s.Data.(hir.ReturnData)
		if !ok {
			return
		}
		name, isVar := ret.Value.VarName()
		if !isVar || !isRef[name] {
			precise = false
			return
		}
		returned[name] = true
	})

	a := Annotation{Lifetime: DefaultLifetime}
	for _, name := range refs {
		if !precise || returned[name] {
			a.Params = append(a.Params, name)
		}
	}
	if len(a.Params) == 0 {
		a.Params = refs
	}
	return a
}

// Apply returns a copy of fn with the annotation's lifetime declared on the
// function and bound to the result and the listed parameters. fn is not
// modified; the body is shared.
func (a Annotation) Apply(fn *hir.Func) *hir.Func {
	if fn == nil || !a.Needed() {
		return fn
	}
	tied := make(map[string]bool, len(a.Params))
	for _, name := range a.Params {
		tied[name] = true
	}
	params := make([]hir.Param, len(fn.Params))
	for i, p := range fn.Params {
		if tied[p.Name] {
			p.Type = p.Type.WithLifetime(a.Lifetime)
		}
		params[i] = p
	}
	return &hir.Func{
		Name:      fn.Name,
		Lifetimes: append(append([]string(nil), fn.Lifetimes...), a.Lifetime),
		Result:    fn.Result.WithLifetime(a.Lifetime),
		Params:    params,
		Body:      fn.Body,
	}
}

// Validate checks that every lifetime used in fn's signature is declared and
// that a reference result is determined by elision or an explicit lifetime.
func Validate(fn *hir.Func) error {
	if fn == nil {
		return nil
	}
	declared := make(map[string]bool, len(fn.Lifetimes))
	for _, lt := range fn.Lifetimes {
		declared[lt] = true
	}
	refs := 0
	for _, p := range fn.Params {
		if p.Type.Kind != hir.TypeReference {
			continue
		}
		refs++
		if lt := p.Type.Lifetime; lt != "" && !declared[lt] {
			return fmt.Errorf("%s: parameter %s uses undeclared lifetime '%s", fn.Name, p.Name, lt)
		}
	}
	if fn.Result.Kind != hir.TypeReference {
		return nil
	}
	switch lt := fn.Result.Lifetime; {
	case lt != "" && !declared[lt]:
		return fmt.Errorf("%s: result uses undeclared lifetime '%s", fn.Name, lt)
	case lt == "" && refs != 1:
		return fmt.Errorf("%s: result lifetime cannot be elided from %d reference parameters", fn.Name, refs)
	}
	return nil
}
