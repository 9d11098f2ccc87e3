package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/rgmatch/internal/input"
)

// Default GTF attribute tags for gene and transcript identifiers.
const (
	DefaultGeneIDTag       = "gene_id"
	DefaultTranscriptIDTag = "transcript_id"
)

// GTFLoader loads the gene model from a GTF file.
type GTFLoader struct {
	path          string
	geneTag       string
	transcriptTag string
}

// NewGTFLoader creates a new GTF loader using the default id tags.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{
		path:          path,
		geneTag:       DefaultGeneIDTag,
		transcriptTag: DefaultTranscriptIDTag,
	}
}

// SetIDTags overrides the attribute names used for gene and transcript ids.
// Empty values keep the current tag.
func (l *GTFLoader) SetIDTags(geneTag, transcriptTag string) {
	if geneTag != "" {
		l.geneTag = geneTag
	}
	if transcriptTag != "" {
		l.transcriptTag = transcriptTag
	}
}

// Load parses the GTF file (plain, gzip or BGZF) and adds its genes to the cache.
func (l *GTFLoader) Load(c *Cache) error {
	r, err := input.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer r.Close()

	return l.LoadReader(c, r)
}

// LoadReader parses GTF content from r and adds its genes to the cache.
func (l *GTFLoader) LoadReader(c *Cache, r io.Reader) error {
	genes, err := l.parseGTF(r)
	if err != nil {
		return err
	}
	for _, g := range genes {
		c.AddGene(g)
	}
	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// geneBuilder accumulates one gene's lines until the file is fully read.
type geneBuilder struct {
	gene        *Gene
	explicit    bool
	transcripts map[string]*transcriptBuilder
	order       []string
}

type transcriptBuilder struct {
	transcript *Transcript
	explicit   bool
}

// parseGTF parses GTF content and returns genes in first-appearance order.
func (l *GTFLoader) parseGTF(reader io.Reader) ([]*Gene, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	builders := make(map[string]*geneBuilder)
	var order []string

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		switch feat.featureType {
		case "gene", "transcript", "exon":
		default:
			continue
		}

		strand, err := ParseStrand(feat.strand)
		if err != nil {
			continue
		}

		geneID := feat.attributes[l.geneTag]
		if geneID == "" {
			continue
		}

		// Same gene id on two chromosomes (PAR genes) stays two genes
		key := feat.chrom + "\x00" + geneID
		gb, ok := builders[key]
		if !ok {
			gb = &geneBuilder{
				gene:        NewGene(geneID, feat.chrom, strand),
				transcripts: make(map[string]*transcriptBuilder),
			}
			builders[key] = gb
			order = append(order, key)
		}

		if feat.featureType == "gene" {
			gb.gene.SetLength(feat.start, feat.end)
			gb.explicit = true
			continue
		}

		transcriptID := feat.attributes[l.transcriptTag]
		if transcriptID == "" {
			continue
		}

		tb, ok := gb.transcripts[transcriptID]
		if !ok {
			tb = &transcriptBuilder{transcript: NewTranscript(transcriptID)}
			gb.transcripts[transcriptID] = tb
			gb.order = append(gb.order, transcriptID)
		}

		if feat.featureType == "transcript" {
			tb.transcript.SetLength(feat.start, feat.end)
			tb.explicit = true
			continue
		}

		tb.transcript.AddExon(feat.start, feat.end)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	genes := make([]*Gene, 0, len(order))
	for _, key := range order {
		if g := builders[key].build(); g != nil {
			genes = append(genes, g)
		}
	}
	return genes, nil
}

// build renumbers exons and computes missing bounds. Transcripts without
// exons are dropped, and so are genes left without transcripts.
func (gb *geneBuilder) build() *Gene {
	g := gb.gene
	for _, id := range gb.order {
		tb := gb.transcripts[id]
		t := tb.transcript
		if len(t.Exons) == 0 {
			continue
		}
		t.Renumber(g.Strand)
		if !tb.explicit {
			t.CalculateSize()
		}
		g.AddTranscript(t)
	}

	if len(g.Transcripts) == 0 {
		return nil
	}
	if !gb.explicit {
		g.CalculateSize()
	}
	return g
}

// parseLine parses a single GTF line.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}

		attrs[key] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return attrs
}
