// Package driver runs the ownership and lifetime pipeline over functions.
//
// For each function it runs dataflow analysis, ownership inference, safe
// type generation and lifetime analysis in order, turning each weak or
// risky finding into a diagnostic. AnalyzeAll and Batch fan functions out
// over a bounded worker pool and keep results in input order.
package driver

import (
	"github.com/paiml/decy-sub003/internal/borrowgen"
	"github.com/paiml/decy-sub003/internal/ownership"
)

// Options configures a pipeline run. The zero value runs the rule-based
// classifier at borrowgen.DefaultThreshold with GOMAXPROCS workers.
type Options struct {
	Classifier     ownership.Classifier
	Threshold      float64
	Jobs           int
	Cache          *DiskCache
	Events         chan<- Event
	MaxDiagnostics int

	// index is the function's position in the caller's batch. positions
	// maps AnalyzeAll's indices back to the batch when it runs a subset.
	index     int
	positions []int
}

// at returns the options for the i-th function of an AnalyzeAll call.
func (o Options) at(i int) Options {
	o.index = i
	if i < len(o.positions) {
		o.index = o.positions[i]
	}
	o.positions = nil
	return o
}

func (o Options) classifier() ownership.Classifier {
	if o.Classifier == nil {
		return ownership.NewRuleBased()
	}
	return o.Classifier
}

func (o Options) threshold() float64 {
	if o.Threshold <= 0 {
		return borrowgen.DefaultThreshold
	}
	return o.Threshold
}

// Stage names a pipeline step in progress events.
type Stage uint8

const (
	StageQueued Stage = iota
	StageDataflow
	StageInfer
	StageGenerate
	StageLifetime
	StageDone
	StageCached
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageDataflow:
		return "dataflow"
	case StageInfer:
		return "infer"
	case StageGenerate:
		return "generate"
	case StageLifetime:
		return "lifetime"
	case StageDone:
		return "done"
	case StageCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Event reports that Func entered Stage. Index is the function's position
// in the batch, so functions sharing a name stay apart. Done is set on the
// last event for the function.
type Event struct {
	Index int
	Func  string
	Stage Stage
	Done  bool
}

func (o Options) emit(fn string, stage Stage) {
	if o.Events == nil {
		return
	}
	o.Events <- Event{Index: o.index, Func: fn, Stage: stage, Done: stage == StageDone || stage == StageCached}
}
