package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"rhine/internal/pipeline"
)

// NewPlainSink returns a progress sink that prints one line per finished
// file to out. It is used when the terminal UI is off.
func NewPlainSink(out io.Writer) pipeline.SinkFunc {
	var mu sync.Mutex
	return func(ev pipeline.Event) {
		if out == nil || ev.File == "" {
			return
		}
		var line string
		switch ev.Status {
		case pipeline.StatusDone:
			line = fmt.Sprintf("%12s %s (%.1f ms)", "done", ev.File, float64(ev.Elapsed)/float64(time.Millisecond))
		case pipeline.StatusError:
			line = fmt.Sprintf("%12s %s: %s %v", "error", ev.File, ev.Stage, ev.Err)
		default:
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	}
}
