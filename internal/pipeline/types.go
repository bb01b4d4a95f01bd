package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Stage describes a pipeline phase.
type Stage string

const (
	// StageLoad decodes the graph script.
	StageLoad Stage = "load"
	// StageConstruct replays the script into a graph.
	StageConstruct Stage = "construct"
	// StageValidate checks graph invariants.
	StageValidate Stage = "validate"
	// StageEmit writes the listing or snapshot.
	StageEmit Stage = "emit"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageLoad, StageConstruct, StageValidate, StageEmit}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Run calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Emit selects what the emit stage produces.
type Emit string

const (
	// EmitText writes the human-readable graph listing.
	EmitText Emit = "text"
	// EmitJSON writes a JSON snapshot.
	EmitJSON Emit = "json"
	// EmitMsgpack writes a msgpack snapshot.
	EmitMsgpack Emit = "msgpack"
)

// ParseEmit validates an --emit value.
func ParseEmit(s string) (Emit, error) {
	switch e := Emit(strings.ToLower(strings.TrimSpace(s))); e {
	case EmitText, EmitJSON, EmitMsgpack:
		return e, nil
	case "":
		return EmitText, nil
	default:
		return EmitText, fmt.Errorf("unsupported emit kind %q (expected: text|json|msgpack)", s)
	}
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
