// Package cache provides the in-memory gene model and GTF loading.
package cache

import (
	"fmt"
	"math"
)

// Strand is the genomic orientation of a gene.
type Strand int8

const (
	Positive Strand = 1
	Negative Strand = -1
)

// ParseStrand converts a GTF strand column ("+" or "-").
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Positive, nil
	case "-":
		return Negative, nil
	}
	return 0, fmt.Errorf("unsupported strand %q", s)
}

// String returns "+" or "-".
func (s Strand) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// Gene represents a genomic locus with associated transcripts.
// Start and End are sentinels (MaxInt64, 0) until a size is set or calculated.
type Gene struct {
	ID          string        // Gene identifier (value of the configured gene id tag)
	Chrom       string        // Chromosome, as written in the GTF
	Strand      Strand        // Orientation shared by all transcripts
	Start       int64         // Gene start (1-based)
	End         int64         // Gene end (1-based, inclusive)
	Transcripts []*Transcript // Transcripts in GTF order
}

// NewGene creates a gene with sentinel bounds.
func NewGene(id, chrom string, strand Strand) *Gene {
	return &Gene{
		ID:     id,
		Chrom:  chrom,
		Strand: strand,
		Start:  math.MaxInt64,
		End:    0,
	}
}

// AddTranscript appends a transcript to the gene.
func (g *Gene) AddTranscript(t *Transcript) {
	g.Transcripts = append(g.Transcripts, t)
}

// SetLength sets the gene bounds explicitly.
func (g *Gene) SetLength(start, end int64) {
	g.Start = start
	g.End = end
}

// CalculateSize widens the gene bounds to cover every transcript.
func (g *Gene) CalculateSize() {
	for _, t := range g.Transcripts {
		if t.Start < g.Start {
			g.Start = t.Start
		}
		if t.End > g.End {
			g.End = t.End
		}
	}
}

// HasExtent reports whether bounds have been set or calculated.
func (g *Gene) HasExtent() bool {
	return g.Start != math.MaxInt64 && g.End >= g.Start
}

// Length returns End - Start, the span recorded per chromosome by the loader.
func (g *Gene) Length() int64 {
	if !g.HasExtent() {
		return 0
	}
	return g.End - g.Start
}
