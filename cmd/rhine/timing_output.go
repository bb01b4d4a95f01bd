package main

import (
	"fmt"
	"io"
	"time"

	"rhine/internal/pipeline"
)

var stageVerbs = map[pipeline.Stage]string{
	pipeline.StageLoad:      "loaded",
	pipeline.StageConstruct: "constructed",
	pipeline.StageValidate:  "validated",
	pipeline.StageEmit:      "emitted",
}

func printStageTimings(out io.Writer, name string, timings pipeline.Timings) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, "%s:\n", name)
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "  %-12s %.1f ms\n", stageVerbs[stage], toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(out, "  %-12s %.1f ms\n", "total", toMillis(timings.Sum(pipeline.Stages...)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
