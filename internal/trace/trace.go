// Package trace records what the inference pipeline did and how long each
// step took.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "dataflow", parentID)
//	defer span.End("")
//
// Verbosity is set by Level; each event carries a Scope and is dropped when
// the level does not cover it.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // failures only
	LevelPhase               // batch and per-function boundaries
	LevelDetail              // pipeline stages
	LevelDebug               // per-variable decisions
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeFunc
	case LevelDetail:
		return scope <= ScopeStage
	case LevelDebug:
		return true
	}
	return false
}

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer // takes precedence over OutputPath; never closed
	OutputPath string    // "-" or empty for stderr
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	return NewStreamTracer(w, cfg.Level, format), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		// the caller owns Output
		return nopCloser{cfg.Output}, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close from closing writers the tracer does not own.
type nopCloser struct{ io.Writer }

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // a whole batch
	ScopeFunc                    // one function
	ScopeStage                   // one pipeline stage of a function
	ScopeVar                     // one variable decision
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFunc:
		return "func"
	case ScopeStage:
		return "stage"
	case ScopeVar:
		return "var"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 if root
	Name     string
	Detail   string
	Elapsed  time.Duration // span end only
	Extra    map[string]string
}
