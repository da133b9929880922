package zlines

import "github.com/meigma/zlines/internal/decode"

// Errors re-exported from internal packages.
var (
	// ErrDecompression is returned when a decoder cannot be constructed
	// for a compressed stream.
	ErrDecompression = decode.ErrDecompression
)
