package bed

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/rgmatch/internal/input"
)

// Parser reads regions from a BED file.
type Parser struct {
	reader         *bufio.Reader
	closer         io.Closer
	lineNumber     int
	numMetaColumns int
}

// NewParser creates a new BED parser for the given file.
// Supports plain, gzip and BGZF compressed BED files; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	rc, err := input.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}
	return newParser(rc, rc), nil
}

func newParser(r io.Reader, closer io.Closer) *Parser {
	return &Parser{reader: bufio.NewReader(r), closer: closer}
}

// Next reads the next region.
// Returns nil, nil when there are no more regions.
func (p *Parser) Next() (*Region, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read line %d: %w", p.lineNumber+1, err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		if r := parseLine(strings.TrimRight(line, "\r\n")); r != nil {
			if len(r.Metadata) > p.numMetaColumns {
				p.numMetaColumns = len(r.Metadata)
			}
			return r, nil
		}

		if err == io.EOF {
			return nil, nil
		}
	}
}

// ReadChunk reads up to n regions. A short or empty slice means the input is
// exhausted. n <= 0 reads nothing.
func (p *Parser) ReadChunk(n int) ([]*Region, error) {
	if n <= 0 {
		return nil, nil
	}
	regions := make([]*Region, 0, n)
	for len(regions) < n {
		r, err := p.Next()
		if err != nil {
			return regions, err
		}
		if r == nil {
			break
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// NumMetaColumns returns the largest number of optional columns seen so far.
func (p *Parser) NumMetaColumns() int {
	return p.numMetaColumns
}

// Close closes the parser and releases resources.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// parseLine converts one tab-separated line into a Region.
// Empty lines, lines with fewer than three columns and lines whose
// coordinates are not integers (track/header lines) yield nil.
func parseLine(line string) *Region {
	if line == "" {
		return nil
	}

	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return nil
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil
	}

	meta := fields[3:]
	if len(meta) > MaxMetaColumns {
		meta = meta[:MaxMetaColumns]
	}

	return &Region{
		Chrom:    fields[0],
		Start:    start,
		End:      end,
		Metadata: append([]string{}, meta...),
	}
}

// Regions holds a fully read BED file grouped by chromosome.
type Regions struct {
	ByChrom        map[string][]*Region // regions sorted by start
	NumMetaColumns int
}

// Chromosomes returns the chromosome names in sorted order.
func (rs *Regions) Chromosomes() []string {
	chroms := make([]string, 0, len(rs.ByChrom))
	for chrom := range rs.ByChrom {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// Count returns the total number of regions.
func (rs *Regions) Count() int {
	n := 0
	for _, regions := range rs.ByChrom {
		n += len(regions)
	}
	return n
}

// readAllChunk is the number of regions ReadAll requests at a time.
const readAllChunk = 4096

// ReadAll drains the parser and groups regions by chromosome,
// each chromosome sorted by start (stable for equal starts).
func ReadAll(p *Parser) (*Regions, error) {
	rs := &Regions{ByChrom: make(map[string][]*Region)}
	for {
		chunk, err := p.ReadChunk(readAllChunk)
		if err != nil {
			return nil, err
		}
		for _, r := range chunk {
			rs.ByChrom[r.Chrom] = append(rs.ByChrom[r.Chrom], r)
		}
		if len(chunk) < readAllChunk {
			break
		}
	}

	for _, regions := range rs.ByChrom {
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Start < regions[j].Start
		})
	}
	rs.NumMetaColumns = p.NumMetaColumns()
	return rs, nil
}
