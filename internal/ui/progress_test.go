package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"rhine/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("build", []string{"a.toml", "b.toml"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{File: "a.toml", Stage: pipeline.StageConstruct, Status: pipeline.StatusWorking})
	if m.items[0].status != "building" {
		t.Fatalf("status = %q, want building", m.items[0].status)
	}
	if got := m.percent(); got != 0.2 {
		t.Errorf("percent = %v, want 0.2", got)
	}

	m.applyEvent(pipeline.Event{File: "a.toml", Stage: pipeline.StageEmit, Status: pipeline.StatusDone, Elapsed: 3 * time.Millisecond})
	m.applyEvent(pipeline.Event{File: "b.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("bad toml")})
	if got := m.percent(); got != 1.0 {
		t.Errorf("percent = %v, want 1", got)
	}

	m.applyEvent(pipeline.Event{Stage: pipeline.StageEmit, Status: pipeline.StatusWorking})
	if m.stageLabel != "emitting" {
		t.Errorf("stageLabel = %q, want emitting", m.stageLabel)
	}

	view := m.View()
	for _, want := range []string{"build (emitting)", "a.toml", "3.0 ms", "bad toml", "1 done, 1 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelIgnoresUnknownFiles(t *testing.T) {
	m := NewProgressModel("build", []string{"a.toml"}, nil).(*progressModel)
	if cmd := m.applyEvent(pipeline.Event{File: "zzz.toml", Status: pipeline.StatusDone}); cmd != nil {
		t.Errorf("unknown file produced a command")
	}
	if m.items[0].status != "queued" {
		t.Errorf("status = %q, want queued", m.items[0].status)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"averyverylongname", 11, "avery..."},
		{"abcdef", 3, "abc"},
		{"графы-и-блоки", 10, "граф..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPlainSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPlainSink(&buf)
	sink.OnEvent(pipeline.Event{File: "a.toml", Status: pipeline.StatusQueued})
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
	sink.OnEvent(pipeline.Event{File: "a.toml", Stage: pipeline.StageEmit, Status: pipeline.StatusDone, Elapsed: 1500 * time.Microsecond})
	sink.OnEvent(pipeline.Event{File: "b.toml", Stage: pipeline.StageConstruct, Status: pipeline.StatusError, Err: errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "done a.toml (1.5 ms)") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "error b.toml: construct boom") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
