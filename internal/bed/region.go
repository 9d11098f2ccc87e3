// Package bed provides BED region parsing.
package bed

import "fmt"

// MaxMetaColumns is the number of optional BED columns carried through to output.
const MaxMetaColumns = 9

// headerNames are the standard names of the optional BED columns.
var headerNames = [MaxMetaColumns]string{
	"name",
	"score",
	"strand",
	"thickStart",
	"thickEnd",
	"itemRgb",
	"blockCount",
	"blockSizes",
	"blockStarts",
}

// Region represents a genomic interval read from a BED file.
// Coordinates are kept exactly as written in the file.
type Region struct {
	Chrom    string
	Start    int64
	End      int64
	Metadata []string // Optional BED columns (at most MaxMetaColumns)
}

// Length returns End - Start + 1.
func (r *Region) Length() int64 {
	return r.End - r.Start + 1
}

// Midpoint returns (Start + End) / 2 with integer division.
func (r *Region) Midpoint() int64 {
	return (r.Start + r.End) / 2
}

// ID returns the region identifier chrom_start_end.
func (r *Region) ID() string {
	return fmt.Sprintf("%s_%d_%d", r.Chrom, r.Start, r.End)
}

// Headers returns the standard names of the first n optional BED columns.
func Headers(n int) []string {
	n = max(0, min(n, MaxMetaColumns))
	return append([]string(nil), headerNames[:n]...)
}
