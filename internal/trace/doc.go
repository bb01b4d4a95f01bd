// Package trace records structured events while graphs are built.
//
// Tracing is opt-in: the CLI builds a Tracer from --trace flags and attaches
// it to the command context. Graph construction pulls the tracer back out of
// the context and reports block/instruction creation, edge splits and
// pipeline stages.
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - LogTracer: forwards events into a zap logger
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A Level selects how deep events go:
//
//   - LevelPhase: driver and pipeline stages
//   - LevelDetail: per-graph events
//   - LevelDebug: every block, instruction and edge
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "construct", parentID)
//	defer span.End("")
package trace
