package dataflow

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/paiml/decy-sub003/internal/hir"
)

// Signal weights for IsArrayParameter.
const (
	scoreIntFollower    = 3
	scoreArrayName      = 2
	scoreLengthFollower = 2
	scoreIndexed        = 3
	penaltyArithmetic   = 2

	minSignals = 2
	minScore   = 3
)

var (
	lengthNames = map[string]bool{
		"n": true, "len": true, "length": true, "size": true, "count": true,
		"num": true, "cnt": true, "nelems": true, "nitems": true, "sz": true,
	}
	lengthFragments = []string{"len", "size", "count", "num"}
	arrayFragments  = []string{"arr", "buf"}
	arrayNames      = map[string]bool{
		"data": true, "items": true, "elems": true, "values": true, "vals": true, "list": true,
	}
)

// fold lowercases a C identifier for comparison. A Caser keeps state, so
// one is built per call to stay safe for concurrent analyses.
func fold(name string) string {
	return cases.Fold().String(name)
}

func isLengthName(name string) bool {
	n := fold(name)
	if lengthNames[n] {
		return true
	}
	for _, tok := range strings.Split(n, "_") {
		if lengthNames[tok] {
			return true
		}
	}
	for _, frag := range lengthFragments {
		if strings.Contains(n, frag) {
			return true
		}
	}
	return false
}

func isArrayName(name string) bool {
	n := fold(name)
	if arrayNames[n] {
		return true
	}
	for _, frag := range arrayFragments {
		if strings.Contains(n, frag) {
			return true
		}
	}
	return false
}

// IsArrayParameter scores the evidence that a pointer parameter is really an
// array. The second result is false when name is not a parameter of the
// function, in which case the question is meaningless.
//
// Non-pointer parameters and pointers to structs are never arrays.
func (g *Graph) IsArrayParameter(name string) (bool, bool) {
	if g.fn == nil {
		return false, false
	}
	idx := g.fn.ParamIndex(name)
	if idx < 0 {
		return false, false
	}
	param := g.fn.Params[idx]
	if !param.Type.IsPointer() || param.Type.Pointee().Kind == hir.TypeStruct {
		return false, true
	}

	signals, score := 0, 0
	if idx+1 < len(g.fn.Params) {
		next := g.fn.Params[idx+1]
		if next.Type.IsInteger() {
			signals++
			score += scoreIntFollower
			if isLengthName(next.Name) {
				signals++
				score += scoreLengthFollower
			}
		}
	}
	if isArrayName(name) {
		signals++
		score += scoreArrayName
	}
	if g.indexed[name] {
		signals++
		score += scoreIndexed
	}
	if g.arith[name] {
		score -= penaltyArithmetic
	}
	return signals >= minSignals && score >= minScore, true
}

// HasSizeParameter reports whether another integer parameter looks like the
// element count for name: a generic length name (`n`, `len`, `count`, ...)
// or one derived from name itself (`buf_len`, `bufsize`).
func (g *Graph) HasSizeParameter(name string) bool {
	if g.fn == nil || g.fn.ParamIndex(name) < 0 {
		return false
	}
	base := fold(name)
	for _, p := range g.fn.Params {
		if p.Name == name || !p.Type.IsInteger() {
			continue
		}
		n := fold(p.Name)
		switch n {
		case base + "_len", base + "_size", base + "_count", base + "len", base + "size", "n_" + base:
			return true
		}
		if isLengthName(p.Name) {
			return true
		}
	}
	return false
}

// ArrayParam pairs an array parameter with the length parameter that
// immediately follows it, if any.
type ArrayParam struct {
	Name        string
	LengthParam string
}

// ArrayParameters lists parameters IsArrayParameter accepts, in declaration order.
func (g *Graph) ArrayParameters() []ArrayParam {
	if g.fn == nil {
		return nil
	}
	var out []ArrayParam
	for i, p := range g.fn.Params {
		if ok, _ := g.IsArrayParameter(p.Name); !ok {
			continue
		}
		ap := ArrayParam{Name: p.Name}
		if i+1 < len(g.fn.Params) {
			next := g.fn.Params[i+1]
			if next.Type.IsInteger() && isLengthName(next.Name) {
				ap.LengthParam = next.Name
			}
		}
		out = append(out, ap)
	}
	return out
}
