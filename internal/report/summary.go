// Package report renders per-function inference summaries for people (text)
// and for tools (YAML).
package report

import (
	"github.com/paiml/decy-sub003/internal/observ"
)

// Summary is the serializable outcome of analyzing one function. It is what
// the disk cache stores, so the msgpack layout is versioned by the cache.
type Summary struct {
	Func        string        `yaml:"func" msgpack:"func"`
	Fingerprint string        `yaml:"fingerprint" msgpack:"fingerprint"`
	Classifier  string        `yaml:"classifier" msgpack:"classifier"`
	Threshold   float64       `yaml:"threshold" msgpack:"threshold"`
	Original    string        `yaml:"original" msgpack:"original"`
	Signature   string        `yaml:"signature" msgpack:"signature"`
	Rust        string        `yaml:"rust" msgpack:"rust"`
	Variables   []Variable    `yaml:"variables,omitempty" msgpack:"variables"`
	Dangling    []string      `yaml:"dangling,omitempty" msgpack:"dangling"`
	Relations   []Relation    `yaml:"relations,omitempty" msgpack:"relations"`
	Diagnostics []Finding     `yaml:"diagnostics,omitempty" msgpack:"diagnostics"`
	Timings     observ.Report `yaml:"timings,omitempty" msgpack:"-"`
	Cached      bool          `yaml:"cached,omitempty" msgpack:"-"`
}

// Variable is the ownership decision for one pointer variable.
type Variable struct {
	Name       string  `yaml:"name" msgpack:"name"`
	Kind       string  `yaml:"kind" msgpack:"kind"`
	Confidence float64 `yaml:"confidence" msgpack:"confidence"`
	Trusted    bool    `yaml:"trusted" msgpack:"trusted"`
	Type       string  `yaml:"type" msgpack:"type"`
	SafeType   string  `yaml:"safe_type" msgpack:"safe_type"`
	Reason     string  `yaml:"reason" msgpack:"reason"`
}

// Relation is a lifetime relation between two locals.
type Relation struct {
	First    string `yaml:"first" msgpack:"first"`
	Second   string `yaml:"second" msgpack:"second"`
	Relation string `yaml:"relation" msgpack:"relation"`
}

// Finding is a diagnostic flattened for output.
type Finding struct {
	Severity string   `yaml:"severity" msgpack:"severity"`
	Code     string   `yaml:"code" msgpack:"code"`
	Variable string   `yaml:"variable,omitempty" msgpack:"variable"`
	Message  string   `yaml:"message" msgpack:"message"`
	Notes    []string `yaml:"notes,omitempty" msgpack:"notes"`
}

// Totals aggregates a batch of summaries.
type Totals struct {
	Functions int
	Variables int
	Trusted   int
	Dangling  int
	Warnings  int
}

// Tally computes Totals over summaries.
func Tally(summaries []Summary) Totals {
	var t Totals
	t.Functions = len(summaries)
	for i := range summaries {
		s := &summaries[i]
		t.Variables += len(s.Variables)
		for _, v := range s.Variables {
			if v.Trusted {
				t.Trusted++
			}
		}
		t.Dangling += len(s.Dangling)
		for _, f := range s.Diagnostics {
			if f.Severity == "WARNING" || f.Severity == "ERROR" {
				t.Warnings++
			}
		}
	}
	return t
}
