package zlines

import "log/slog"

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers sets the number of files processed in parallel.
// Values < 0 force serial processing. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithLogger sets a logger for per-file failure and dropped-line
// diagnostics. If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(p *Processor) {
		p.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(p *Processor) {
		if n < 0 {
			n = 0
		}
		p.decoderConcurrency = n
		p.decoderConcurrencySet = true
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory
// mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(p *Processor) {
		p.decoderLowmem = enabled
		p.decoderLowmemSet = true
	}
}
