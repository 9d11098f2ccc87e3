package cache

import (
	"math"
	"sort"
	"strconv"
)

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID    string // Transcript ID
	Start int64  // Transcript start (1-based), MaxInt64 until known
	End   int64  // Transcript end (1-based, inclusive), 0 until known
	Exons []Exon // Exons sorted by genomic start after Renumber
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Transcriptional index (1-based), set by Renumber
	Start  int64 // Genomic start (1-based)
	End    int64 // Genomic end (1-based, inclusive)
}

// Length returns the exon length in bases.
func (e Exon) Length() int64 {
	return e.End - e.Start + 1
}

// Label returns the exon number as printed in output rows.
func (e Exon) Label() string {
	return strconv.Itoa(e.Number)
}

// NewTranscript creates a transcript with sentinel bounds.
func NewTranscript(id string) *Transcript {
	return &Transcript{
		ID:    id,
		Start: math.MaxInt64,
		End:   0,
	}
}

// AddExon appends an exon. Call Renumber once the exon set is complete.
func (t *Transcript) AddExon(start, end int64) {
	t.Exons = append(t.Exons, Exon{Start: start, End: end})
}

// SetLength sets the transcript bounds explicitly.
func (t *Transcript) SetLength(start, end int64) {
	t.Start = start
	t.End = end
}

// CalculateSize widens the transcript bounds to cover every exon.
func (t *Transcript) CalculateSize() {
	for _, e := range t.Exons {
		if e.Start < t.Start {
			t.Start = e.Start
		}
		if e.End > t.End {
			t.End = e.End
		}
	}
}

// Renumber sorts exons by genomic start and assigns transcriptional indices.
// Forward strand exons are numbered 1..N left to right; reverse strand
// exons N..1, so index 1 is always the transcriptionally first exon.
func (t *Transcript) Renumber(strand Strand) {
	sort.SliceStable(t.Exons, func(i, j int) bool {
		return t.Exons[i].Start < t.Exons[j].Start
	})

	n := len(t.Exons)
	for i := range t.Exons {
		if strand == Negative {
			t.Exons[i].Number = n - i
		} else {
			t.Exons[i].Number = i + 1
		}
	}
}

// FirstExon returns the transcriptionally first exon.
func (t *Transcript) FirstExon(strand Strand) Exon {
	if strand == Negative {
		return t.Exons[len(t.Exons)-1]
	}
	return t.Exons[0]
}

// LastExon returns the transcriptionally last exon.
func (t *Transcript) LastExon(strand Strand) Exon {
	if strand == Negative {
		return t.Exons[0]
	}
	return t.Exons[len(t.Exons)-1]
}
