// Package observ measures how long each inference stage of a function takes.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Stage records the duration of one pipeline stage.
type Stage struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects stage durations in the order stages started. It is not
// safe for concurrent use; the driver keeps one per function.
type Timer struct {
	stages []Stage
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{stages: make([]Stage, 0, 4)} }

// Begin starts a stage and returns its index.
func (t *Timer) Begin(name string) int {
	t.stages = append(t.stages, Stage{Name: name, Start: time.Now()})
	return len(t.stages) - 1
}

// End finishes a stage by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.stages) {
		return
	}
	s := &t.stages[idx]
	s.Dur = time.Since(s.Start)
	s.Note = note
}

// Record adds an already measured stage, e.g. one timed by a trace span.
func (t *Timer) Record(name string, d time.Duration, note string) {
	t.stages = append(t.stages, Stage{Name: name, Start: time.Now().Add(-d), Dur: d, Note: note})
}

// Summary renders a fixed-width table of the stages and their total.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, s := range report.Stages {
		fmt.Fprintf(&sb, "  %-12s %7.3f ms", s.Name, s.DurationMS)
		if s.Note != "" {
			sb.WriteString("  // " + s.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %7.3f ms\n", "total", report.TotalMS)
	return sb.String()
}

// StageReport is the serializable form of a Stage.
type StageReport struct {
	Name       string  `json:"name" yaml:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" yaml:"note,omitempty" msgpack:"note,omitempty"`
}

// Report aggregates a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms" yaml:"total_ms" msgpack:"total_ms"`
	Stages  []StageReport `json:"stages" yaml:"stages" msgpack:"stages"`
}

// Report returns the stages and the total in milliseconds.
func (t *Timer) Report() Report {
	if len(t.stages) == 0 {
		return Report{}
	}
	report := Report{
		Stages: make([]StageReport, len(t.stages)),
	}
	var total time.Duration
	for i, s := range t.stages {
		total += s.Dur
		report.Stages[i] = StageReport{
			Name:       s.Name,
			DurationMS: durationToMillis(s.Dur),
			Note:       s.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
