package ui

import (
	"strings"
	"testing"

	"github.com/paiml/decy-sub003/internal/driver"
)

func TestProgressTracksStages(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("analyzing", []string{"sum", "pick"}, events).(*progressModel)

	m.Update(eventMsg{Index: 0, Func: "sum", Stage: driver.StageDone, Done: true})
	m.Update(eventMsg{Index: 1, Func: "pick", Stage: driver.StageInfer})
	m.Update(eventMsg{Index: 5, Func: "missing", Stage: driver.StageDone})

	if got := m.finished(); got != 1 {
		t.Errorf("expected 1 finished function, got %d", got)
	}
	if got := m.percent(); got != (1.0+0.35)/2 {
		t.Errorf("unexpected percent %v", got)
	}
	view := m.View()
	for _, want := range []string{"analyzing (1/2)", "done", "infer", "pick"} {
		if !strings.Contains(view, want) {
			t.Errorf("missing %q in view:\n%s", want, view)
		}
	}
}

func TestProgressKeepsDuplicateNamesApart(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("analyzing", []string{"init", "init"}, events).(*progressModel)

	m.Update(eventMsg{Index: 1, Func: "init", Stage: driver.StageDone, Done: true})
	if m.items[0].stage != driver.StageQueued || m.items[1].stage != driver.StageDone {
		t.Fatalf("expected only the second row to finish, got %v and %v", m.items[0].stage, m.items[1].stage)
	}
	m.Update(eventMsg{Index: 0, Func: "init", Stage: driver.StageDone, Done: true})
	if got := m.finished(); got != 2 {
		t.Errorf("expected both rows finished, got %d", got)
	}
	if !strings.Contains(m.View(), "analyzing (2/2)") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestProgressQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("x", []string{"f"}, events).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("expected doneMsg on a closed channel")
	}
	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: x (0/1)") {
		t.Errorf("expected a finished view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("very_long_function_name", 10); got != "very_lo..." {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
}
