package zlines

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/zlines/internal/decode"
	"github.com/meigma/zlines/internal/scan"
)

// Handler receives one logical line and the path of the file it came from.
//
// It may be invoked concurrently for different files, so it must be safe
// for concurrent use; invocations for the same file are strictly ordered
// by stream position. A Handler never receives errors.
type Handler func(line string, path string)

// Stats summarizes a Process run.
type Stats struct {
	// Files is the number of files processed to end of stream.
	Files int

	// Lines is the number of lines delivered to the handler.
	Lines int

	// DroppedLines is the number of lines discarded because they were
	// not valid UTF-8.
	DroppedLines int

	// FailedFiles is the number of files abandoned on an open or
	// decode failure.
	FailedFiles int
}

// Processor extracts lines from compressed files.
//
// A Processor is safe for concurrent use and may be reused across calls;
// its zstd decoders are pooled and reset between files.
type Processor struct {
	workers int // 0 = GOMAXPROCS, <0 = serial
	logger  *slog.Logger
	pool    *decode.Pool

	maxDecoderMemory      uint64
	decoderConcurrency    int
	decoderConcurrencySet bool
	decoderLowmem         bool
	decoderLowmemSet      bool
}

// New creates a Processor.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	p.pool = decode.NewPool(decode.Config{
		MaxDecoderMemory: p.maxDecoderMemory,
		Concurrency:      p.decoderConcurrency,
		ConcurrencySet:   p.decoderConcurrencySet,
		Lowmem:           p.decoderLowmem,
		LowmemSet:        p.decoderLowmemSet,
	})
	return p
}

// Process is a convenience wrapper around New(opts...).Process.
func Process(ctx context.Context, paths []string, h Handler, opts ...Option) (Stats, error) {
	return New(opts...).Process(ctx, paths, h)
}

// Process reads every file in paths and delivers each logical line to h.
//
// Files are processed concurrently by a fixed-size worker pool; each file
// is an independent unit of work with its own file handle, decoder, and
// line state. A failure on one file is logged, counted in the stats, and
// joined into the returned error, but never aborts the other files. Lines
// already delivered before a mid-stream failure stay delivered.
//
// The context gates job dispatch only: once a file's job has started it
// runs to end of stream or to its first unrecoverable error.
func (p *Processor) Process(ctx context.Context, paths []string, h Handler) (Stats, error) {
	var (
		files, lines, dropped, failed atomic.Int64

		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(p.workerCount(len(paths)))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		g.Go(func() error {
			res, err := p.processFile(path, h)
			lines.Add(int64(res.Lines))
			dropped.Add(int64(res.Dropped))
			if res.Dropped > 0 {
				p.log().Warn("dropped lines that were not valid UTF-8",
					"path", path, "lines", res.Dropped)
			}
			if err != nil {
				failed.Add(1)
				p.log().Error("processing failed", "path", path, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
				return nil
			}
			files.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	stats := Stats{
		Files:        int(files.Load()),
		Lines:        int(lines.Load()),
		DroppedLines: int(dropped.Load()),
		FailedFiles:  int(failed.Load()),
	}
	return stats, errors.Join(errs...)
}

// processFile runs one file to end of stream, delivering lines to h.
func (p *Processor) processFile(path string, h Handler) (scan.Result, error) {
	format, archive := decode.Detect(path)

	f, err := os.Open(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return scan.Result{}, err
	}
	defer f.Close()

	r, release, err := p.pool.Reader(bufio.NewReader(f), format)
	if err != nil {
		return scan.Result{}, err
	}
	defer release()

	emit := func(line string) { h(line, path) }
	if archive {
		return scan.Archive(r, emit)
	}
	return scan.Plain(r, emit)
}

// workerCount determines the fan-out width for a run over jobs files.
func (p *Processor) workerCount(jobs int) int {
	if p.workers < 0 || jobs < 2 {
		return 1
	}
	workers := p.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}
