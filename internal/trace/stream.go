package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// Trace output is best effort and never fails the analysis.
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls the writer's Flush method when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// Recorder keeps events in memory. It is meant for tests and for callers
// that want to inspect a run after the fact.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	events []Event
}

// NewRecorder creates a Recorder at level.
func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Emit(ev *Event) {
	if !r.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()
	r.mu.Lock()
	r.events = append(r.events, stored)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Flush() error  { return nil }
func (r *Recorder) Close() error  { return nil }
func (r *Recorder) Level() Level  { return r.level }
func (r *Recorder) Enabled() bool { return r.level > LevelOff }

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the package-level no-op tracer.
var Nop Tracer = nopTracer{}

// FormatEvent renders an event in the given format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time      string            `json:"time"`
		Seq       uint64            `json:"seq"`
		Kind      string            `json:"kind"`
		Scope     string            `json:"scope"`
		SpanID    uint64            `json:"span_id,omitempty"`
		ParentID  uint64            `json:"parent_id,omitempty"`
		Name      string            `json:"name"`
		Detail    string            `json:"detail,omitempty"`
		ElapsedUS int64             `json:"elapsed_us,omitempty"`
		Extra     map[string]string `json:"extra,omitempty"`
	}
	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Extra:     ev.Extra,
	})
	if err != nil {
		return []byte(fmt.Sprintf("{\"error\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// formatText renders `[seq] scope →/←/• name (detail) {k=v} elapsed`.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] %-6s ", ev.Seq, ev.Scope)
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " %s", ev.Elapsed)
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
