// Package zlines extracts logical text lines from compressed files and
// delivers each line, together with its source path, to a caller-supplied
// handler, processing all files concurrently.
//
// Plain compressed files are decompressed and split on newlines. Files
// whose name ends in .tar before the compression suffix are treated as tar
// archives wrapping one concatenated text stream: 512-byte tar header
// blocks are detected and removed without disturbing lines that straddle
// block boundaries.
//
// # Quick Start
//
//	stats, err := zlines.Process(ctx,
//	    []string{"events.jsonl.zst", "archive.jsonl.tar.zst"},
//	    func(line, path string) {
//	        fmt.Printf("%s: %s\n", path, line)
//	    })
//
// The handler may be invoked concurrently for different files, so it must
// be safe for concurrent use; invocations for one file arrive in stream
// order. A failure on one file never aborts the others.
package zlines
