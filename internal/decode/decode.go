// Package decode maps file suffixes to streaming decompressors and manages
// reusable zstd decoders.
package decode

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// ErrDecompression is returned when a decoder cannot be constructed for a
// compressed stream.
var ErrDecompression = errors.New("zlines: decompression failed")

// Format identifies the compression wrapping an input file.
type Format int

// Supported compression formats.
const (
	FormatNone Format = iota
	FormatZstd
	FormatGzip
	FormatLZ4
	FormatBzip2
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatZstd:
		return "zstd"
	case FormatGzip:
		return "gzip"
	case FormatLZ4:
		return "lz4"
	case FormatBzip2:
		return "bzip2"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Detect classifies a path by suffix: the compression format of its outer
// layer and whether the remaining stem names a tar archive. Unrecognized
// suffixes select FormatNone, reading the file as already-decompressed text.
//
// Detection runs once per file, before any bytes are read.
func Detect(path string) (format Format, archive bool) {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".tgz"):
		return FormatGzip, true
	case strings.HasSuffix(name, ".tzst"):
		return FormatZstd, true
	}
	ext := filepath.Ext(name)
	switch ext {
	case ".zst", ".zstd":
		format = FormatZstd
	case ".gz", ".gzip":
		format = FormatGzip
	case ".lz4":
		format = FormatLZ4
	case ".bz2":
		format = FormatBzip2
	default:
		return FormatNone, strings.HasSuffix(name, ".tar")
	}
	stem := strings.TrimSuffix(name, ext)
	return format, strings.HasSuffix(stem, ".tar")
}

// Reader wraps r in a streaming decoder for the given format. The caller
// must call the returned release function when done reading. If an error is
// returned, no release function needs to be called.
func (p *Pool) Reader(r io.Reader, format Format) (io.Reader, func(), error) {
	switch format {
	case FormatNone:
		return r, func() {}, nil
	case FormatZstd:
		return p.Get(r)
	case FormatGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case FormatLZ4:
		return lz4.NewReader(r), func() {}, nil
	case FormatBzip2:
		return bzip2.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown compression format: %d", format)
	}
}
