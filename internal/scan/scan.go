// Package scan implements the line-splitting core: a plain newline scanner
// and a tar-block-aware splitter that removes 512-byte header blocks from a
// concatenated stream without breaking lines that span block boundaries.
package scan

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// BlockSize is the fixed tar block size in bytes.
const BlockSize = 512

// magicOffset is where the ustar magic field lives inside a header block.
const magicOffset = 257

var ustarMagic = []byte("ustar")

// Emit receives one logical line. It is called synchronously from the
// scanning loop, in stream order.
type Emit func(line string)

// Result reports what a scan produced.
type Result struct {
	// Lines is the number of lines delivered to the emit function.
	Lines int

	// Dropped is the number of lines discarded because they were not
	// valid UTF-8.
	Dropped int
}

// emitLine delivers line if it decodes as valid UTF-8, otherwise counts it
// as dropped. The line bytes are copied before delivery.
func (res *Result) emitLine(line []byte, emit Emit) {
	if !utf8.Valid(line) {
		res.Dropped++
		return
	}
	emit(string(line))
	res.Lines++
}

// Plain splits the stream r on newlines and emits each line without its
// line ending. A trailing carriage return is stripped. A final line lacking
// a trailing newline is still emitted at end of stream. Lines that are not
// valid UTF-8 are dropped and counted; scanning continues with the next
// line. On a mid-stream read error the pending partial line is discarded:
// a line is bounded by a newline or end of stream, never by a corruption
// point.
func Plain(r io.Reader, emit Emit) (Result, error) {
	var res Result
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return res, err
		}
		if n := len(line); n > 0 {
			if line[n-1] == '\n' {
				line = line[:n-1]
			}
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			res.emitLine(line, emit)
		}
		if err != nil {
			return res, nil
		}
	}
}

// Archive reads the stream r in 512-byte blocks, skipping tar header blocks
// and emitting logical lines reassembled across payload block boundaries.
//
// A header block acts as a flush point: any pending partial line is emitted
// before the block is discarded, so a line never spans two archived members.
// Only the block carrying the ustar magic is recognized; padding and header
// extension blocks without the magic fall through to payload handling.
func Archive(r io.Reader, emit Emit) (Result, error) {
	var (
		res       Result
		block     [BlockSize]byte
		remainder []byte
	)
	for {
		n, err := io.ReadFull(r, block[:])
		if n > 0 {
			if isHeaderBlock(block[:n]) {
				if len(remainder) > 0 {
					res.emitLine(remainder, emit)
					remainder = remainder[:0]
				}
			} else {
				remainder = res.splitPayload(block[:n], remainder, emit)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return res, err
		}
	}
	if len(remainder) > 0 {
		res.emitLine(remainder, emit)
	}
	return res, nil
}

// splitPayload scans a payload block for newlines. Each newline closes the
// pending remainder plus the bytes since the previous split point into one
// line; bytes after the last newline carry over as the new remainder.
func (res *Result) splitPayload(block, remainder []byte, emit Emit) []byte {
	start := 0
	for {
		i := bytes.IndexByte(block[start:], '\n')
		if i < 0 {
			break
		}
		end := start + i
		res.emitLine(append(remainder, block[start:end]...), emit)
		remainder = remainder[:0]
		start = end + 1
	}
	return append(remainder, block[start:]...)
}

// isHeaderBlock reports whether block is a tar header. Only a full 512-byte
// block with the ASCII magic "ustar" at offset 257 qualifies; a short final
// block is never a header, regardless of its contents. No other header
// fields are validated.
func isHeaderBlock(block []byte) bool {
	if len(block) != BlockSize {
		return false
	}
	return bytes.Equal(block[magicOffset:magicOffset+len(ustarMagic)], ustarMagic)
}
