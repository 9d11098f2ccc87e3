// Package input opens line-oriented annotation files that may be plain
// text, gzip or BGZF compressed.
package input

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// Open opens path for reading. "-" reads stdin. Compression is detected
// from the content, not the file name.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := newReader(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rc, nil
}

// NewReader wraps r, decompressing it when it starts with a gzip header.
// Closing the result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	return newReader(r, nil)
}

func newReader(r io.Reader, owner io.Closer) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	rc := &readCloser{Reader: br}
	if owner != nil {
		rc.closers = append(rc.closers, owner)
	}

	header, _ := br.Peek(14)
	switch {
	case isBGZF(header):
		bz, err := bgzf.NewReader(br, 0)
		if err != nil {
			return nil, fmt.Errorf("open bgzf stream: %w", err)
		}
		rc.Reader = bz
		rc.closers = append([]io.Closer{bz}, rc.closers...)
	case isGzip(header):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		rc.Reader = gz
		rc.closers = append([]io.Closer{gz}, rc.closers...)
	}
	return rc, nil
}

// isGzip checks for the gzip magic number (0x1f, 0x8b).
func isGzip(h []byte) bool {
	return len(h) >= 2 && h[0] == 0x1f && h[1] == 0x8b
}

// isBGZF checks for a gzip header whose first extra subfield is the
// BGZF block size ("BC").
func isBGZF(h []byte) bool {
	return isGzip(h) && len(h) >= 14 && h[3]&0x04 != 0 && h[12] == 'B' && h[13] == 'C'
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
