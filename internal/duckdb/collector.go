package duckdb

import (
	"github.com/inodb/rgmatch/internal/annotate"
	"github.com/inodb/rgmatch/internal/bed"
)

// defaultBatchSize is the number of rows buffered before an append.
const defaultBatchSize = 10000

// Collector is an annotate.CandidateWriter that loads rows into a Store in
// batches.
type Collector struct {
	store   *Store
	pending []Row
	batch   int
}

// NewCollector creates a collector writing to s.
func NewCollector(s *Store) *Collector {
	return &Collector{store: s, batch: defaultBatchSize}
}

// WriteHeader is a no-op; the table schema is fixed.
func (c *Collector) WriteHeader() error { return nil }

// Write buffers one row and appends the batch once it is full.
func (c *Collector) Write(r *bed.Region, cand *annotate.Candidate) error {
	c.pending = append(c.pending, Row{Region: r, Candidate: *cand})
	if len(c.pending) >= c.batch {
		return c.Flush()
	}
	return nil
}

// Flush appends any buffered rows.
func (c *Collector) Flush() error {
	if err := c.store.WriteRows(c.pending); err != nil {
		return err
	}
	c.pending = c.pending[:0]
	return nil
}
