// Package diag defines the findings produced by ownership and lifetime
// inference.
//
// Inference stages never fail; when evidence is weak they fall back to the
// raw pointer and record why as a Diagnostic. A Bag collects the diagnostics
// of one function and sorts them into a stable order for reporting.
package diag

import (
	"fmt"
	"sort"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Code is a compact numeric diagnostic identifier.
type Code uint16

const (
	UnknownCode Code = 0

	// Ownership inference
	OwnInfo              Code = 1000
	OwnUnknownPointer    Code = 1001
	OwnLowConfidence     Code = 1002
	OwnLengthParamFolded Code = 1003
	OwnRebasedPointer    Code = 1004

	// Lifetime analysis
	LifeInfo            Code = 2000
	LifeDanglingPointer Code = 2001
	LifeExplicit        Code = 2002
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown diagnostic",
	OwnInfo:              "Ownership information",
	OwnUnknownPointer:    "Ownership unknown, raw pointer kept",
	OwnLowConfidence:     "Inference below confidence threshold, raw pointer kept",
	OwnLengthParamFolded: "Length parameter folded into slice",
	OwnRebasedPointer:    "Array pointer is advanced or re-pointed, raw pointer kept",
	LifeInfo:             "Lifetime information",
	LifeDanglingPointer:  "Local escapes from a nested scope",
	LifeExplicit:         "Explicit lifetime added to signature",
}

// ID returns the stable identifier, e.g. OWN1001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("OWN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LIF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Diagnostic is one finding about a variable of a function.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Func     string
	Variable string
	Message  string
	Notes    []string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s.%s: %s", d.Severity, d.Code.ID(), d.Func, d.Variable, d.Message)
}

// Bag accumulates diagnostics up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means unbounded.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d unless the bag is full and reports whether it was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic has Severity >= SevError.
func (b *Bag) HasErrors() bool { return b.hasAtLeast(SevError) }

// HasWarnings reports whether any diagnostic has Severity >= SevWarning.
func (b *Bag) HasWarnings() bool { return b.hasAtLeast(SevWarning) }

func (b *Bag) hasAtLeast(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the diagnostics. The slice aliases the bag's storage.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends other's diagnostics, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); b.max > 0 && total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by function, variable, severity (desc) and code for stable output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Func != dj.Func {
			return di.Func < dj.Func
		}
		if di.Variable != dj.Variable {
			return di.Variable < dj.Variable
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
