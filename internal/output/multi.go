package output

import (
	"github.com/inodb/rgmatch/internal/annotate"
	"github.com/inodb/rgmatch/internal/bed"
)

// MultiWriter duplicates every call to each of its writers, in order.
type MultiWriter struct {
	writers []annotate.CandidateWriter
}

// NewMultiWriter creates a writer that fans out to ws.
func NewMultiWriter(ws ...annotate.CandidateWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// WriteHeader writes the header of every writer.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the candidate to every writer.
func (m *MultiWriter) Write(r *bed.Region, c *annotate.Candidate) error {
	for _, w := range m.writers {
		if err := w.Write(r, c); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer.
func (m *MultiWriter) Flush() error {
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
