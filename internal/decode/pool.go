package decode

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Config carries zstd decoder tuning shared by all decoders in a Pool.
type Config struct {
	// MaxDecoderMemory limits decoder window memory. Zero means no limit.
	MaxDecoderMemory uint64

	// Concurrency sets the decoder concurrency when ConcurrencySet is true.
	Concurrency    int
	ConcurrencySet bool

	// Lowmem enables low-memory mode when LowmemSet is true.
	Lowmem    bool
	LowmemSet bool
}

// Pool manages reusable zstd decoders to reduce allocation overhead.
// Decoders are reset onto new streams rather than recreated per file.
type Pool struct {
	pool *sync.Pool
	cfg  Config
}

// NewPool creates a new pool for zstd decoders.
func NewPool(cfg Config) *Pool {
	p := &Pool{cfg: cfg}
	p.pool = &sync.Pool{
		New: func() any {
			dec, err := p.newDecoder(nil)
			if err != nil {
				return nil
			}
			return dec
		},
	}
	return p
}

// Get returns a decoder configured to read from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *Pool) Get(r io.Reader) (*zstd.Decoder, func(), error) {
	if p == nil || p.pool == nil {
		// No pool available, create a one-off decoder
		dec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}

	value := p.pool.Get()
	if value == nil {
		// Pool's New function failed, try directly
		dec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	}

	dec := value.(*zstd.Decoder)
	if err := dec.Reset(r); err != nil {
		// Reset failed, close this one and create new
		dec.Close()
		newDec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return newDec, newDec.Close, nil
	}

	// Return decoder with release function that returns it to pool
	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		p.pool.Put(dec)
	}, nil
}

// newDecoder creates a new zstd decoder with the configured tuning.
func (p *Pool) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	var opts []zstd.DOption
	if p != nil {
		if p.cfg.MaxDecoderMemory > 0 {
			opts = append(opts, zstd.WithDecoderMaxMemory(p.cfg.MaxDecoderMemory))
		}
		if p.cfg.ConcurrencySet {
			opts = append(opts, zstd.WithDecoderConcurrency(p.cfg.Concurrency))
		}
		if p.cfg.LowmemSet {
			opts = append(opts, zstd.WithDecoderLowmem(p.cfg.Lowmem))
		}
	}
	dec, err := zstd.NewReader(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return dec, nil
}
