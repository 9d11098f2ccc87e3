// Package output provides annotation output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/rgmatch/internal/annotate"
	"github.com/inodb/rgmatch/internal/bed"
)

// baseColumns are written before the BED metadata columns.
var baseColumns = []string{
	"Region",
	"Midpoint",
	"Gene",
	"Transcript",
	"Exon/Intron",
	"Area",
	"Distance",
	"TSSDistance",
	"PercRegion",
	"PercArea",
}

// TabWriter writes candidates in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	numMeta int
	columns []string
	fields  []string
}

// NewTabWriter creates a new tab-delimited writer. numMeta is the number of
// BED metadata columns appended to every row.
func NewTabWriter(w io.Writer, numMeta int) *TabWriter {
	numMeta = max(0, min(numMeta, bed.MaxMetaColumns))
	return &TabWriter{
		w:       bufio.NewWriter(w),
		numMeta: numMeta,
		columns: append(append([]string(nil), baseColumns...), bed.Headers(numMeta)...),
		fields:  make([]string, 0, len(baseColumns)+numMeta),
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single candidate of region r.
func (tw *TabWriter) Write(r *bed.Region, c *annotate.Candidate) error {
	f := append(tw.fields[:0],
		r.ID(),
		strconv.FormatInt(r.Midpoint(), 10),
		c.Gene,
		c.Transcript,
		c.Exon,
		c.Area.String(),
		strconv.FormatInt(c.Distance, 10),
		strconv.FormatInt(c.TSSDistance, 10),
		formatPct(c.PctgRegion),
		formatPct(c.PctgArea),
	)

	// Short metadata is padded so every row has the header's width.
	for i := range tw.numMeta {
		if i < len(r.Metadata) {
			f = append(f, r.Metadata[i])
		} else {
			f = append(f, "")
		}
	}
	tw.fields = f

	_, err := tw.w.WriteString(strings.Join(f, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
