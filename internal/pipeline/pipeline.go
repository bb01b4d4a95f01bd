// Package pipeline builds graph scripts in parallel: each script is
// loaded, constructed, validated and emitted independently.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rhine/internal/ir"
	"rhine/internal/irbuild"
	"rhine/internal/irsnap"
	"rhine/internal/script"
	"rhine/internal/trace"
)

// Request configures a Run.
type Request struct {
	Files         []string
	Jobs          int // <= 0 means GOMAXPROCS
	Emit          Emit
	OutDir        string // empty: text listings stay in Result.Listing
	ParallelEdges bool
	Color         bool
	Progress      ProgressSink
}

// Result describes one script.
type Result struct {
	File    string
	Name    string
	Output  string // written file, if any
	Listing string // text listing when no OutDir was given
	Blocks  int
	Insts   int
	Timings Timings
	Err     error
}

// Run processes every file in req. A failing script does not stop the
// others; their errors are joined into the returned error. Results keep
// the order of req.Files.
func Run(ctx context.Context, req *Request) ([]Result, error) {
	if req == nil {
		return nil, errors.New("missing pipeline request")
	}
	emit, err := ParseEmit(string(req.Emit))
	if err != nil {
		return nil, err
	}
	if emit != EmitText && req.OutDir == "" {
		return nil, fmt.Errorf("--emit %s requires an output directory", emit)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "pipeline", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span.ID())
	defer span.WithExtra("files", strconv.Itoa(len(req.Files))).End("")

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	Logger().Debug("pipeline start",
		zap.Int("files", len(req.Files)),
		zap.Int("jobs", jobs),
		zap.String("emit", string(emit)))

	emitQueued(req.Progress, req.Files)
	emitOverall(req.Progress, StageLoad, StatusWorking, nil, 0)

	results := make([]Result, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(req.Files))))

	var mu sync.Mutex
	failed := 0
	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res := runFile(gctx, req, emit, path)
			results[i] = res
			if res.Err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	start := time.Now()
	if err := g.Wait(); err != nil {
		emitOverall(req.Progress, StageEmit, StatusError, err, time.Since(start))
		return results, err
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	status := StatusDone
	if failed > 0 {
		status = StatusError
	}
	emitOverall(req.Progress, StageEmit, status, nil, time.Since(start))
	Logger().Debug("pipeline done", zap.Int("failed", failed), zap.Duration("elapsed", time.Since(start)))
	return results, errors.Join(errs...)
}

func runFile(ctx context.Context, req *Request, emit Emit, path string) (res Result) {
	res.File = path
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "build", trace.CurrentSpan(ctx)).
		WithExtra("file", path)
	ctx = trace.WithSpan(ctx, span.ID())
	defer func() {
		detail := "ok"
		if res.Err != nil {
			detail = res.Err.Error()
		}
		span.End(detail)
	}()

	stage := func(s Stage, fn func() error) error {
		emitFile(req.Progress, path, s, StatusWorking, nil, 0)
		begin := time.Now()
		err := fn()
		elapsed := time.Since(begin)
		res.Timings.Set(s, elapsed)
		if err != nil {
			emitFile(req.Progress, path, s, StatusError, err, elapsed)
			Logger().Debug("stage failed", zap.String("file", path), zap.String("stage", string(s)), zap.Error(err))
		}
		return err
	}

	var f *script.File
	if res.Err = stage(StageLoad, func() (err error) {
		f, err = script.Load(path)
		return err
	}); res.Err != nil {
		return res
	}
	res.Name = f.Name

	var g *ir.Graph
	if res.Err = stage(StageConstruct, func() (err error) {
		g, err = script.Build(ctx, f, irbuild.WithParallelEdges(req.ParallelEdges))
		return err
	}); res.Err != nil {
		return res
	}
	defer g.Release()
	res.Blocks, res.Insts = g.NumBlocks(), g.NumInsts()

	if res.Err = stage(StageValidate, func() error {
		if err := ir.Validate(g); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}); res.Err != nil {
		return res
	}

	res.Err = stage(StageEmit, func() error {
		return emitGraph(req, emit, f.Name, g, &res)
	})
	if res.Err == nil {
		emitFile(req.Progress, path, StageEmit, StatusDone, nil, res.Timings.Sum(Stages...))
	}
	return res
}

func emitGraph(req *Request, emit Emit, name string, g *ir.Graph, res *Result) error {
	switch emit {
	case EmitJSON, EmitMsgpack:
		format := irsnap.FormatMsgpack
		if emit == EmitJSON {
			format = irsnap.FormatJSON
		}
		out := filepath.Join(req.OutDir, name+format.Extension())
		if err := irsnap.WriteFile(out, g); err != nil {
			return err
		}
		res.Output = out
		return nil
	default:
		var buf bytes.Buffer
		if err := ir.Dump(&buf, g, ir.DumpOptions{Color: req.Color && req.OutDir == ""}); err != nil {
			return err
		}
		if req.OutDir == "" {
			res.Listing = buf.String()
			return nil
		}
		if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
			return err
		}
		out := filepath.Join(req.OutDir, name+".txt")
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", out, err)
		}
		res.Output = out
		return nil
	}
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitOverall(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
