package misc

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// stackedReader closes every layer of a decompressing reader, innermost last
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

// Close is a method to close all layers of the reader, returning the first error
func (sr *stackedReader) Close() error {
	var first error
	for _, c := range sr.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a reader for a plain, gzip or BGZF compressed file. A path of "-" reads STDIN.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		if err := CheckSTDIN(); err != nil {
			return nil, err
		}
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".bgz") {
		return fh, nil
	}

	// bgzipped tables carry the BGZF magic EOF block, anything else is treated as plain gzip
	if ok, err := bgzf.HasEOF(fh); err == nil && ok {
		bg, err := bgzf.NewReader(fh, 0)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return &stackedReader{Reader: bg, closers: []io.Closer{bg, fh}}, nil
	}
	gz, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	return &stackedReader{Reader: gz, closers: []io.Closer{gz, fh}}, nil
}
