// Package annotate matches genomic regions to the gene features around them.
package annotate

import (
	"fmt"

	"github.com/inodb/rgmatch/internal/cache"
)

// Area is the zone a region occupies relative to a transcript.
type Area int

// Zone labels, in the classic default priority order.
const (
	AreaTSS Area = iota
	AreaFirstExon
	AreaPromoter
	AreaTTS
	AreaIntron
	AreaGeneBody
	AreaUpstream
	AreaDownstream
)

var areaNames = [...]string{
	AreaTSS:        "TSS",
	AreaFirstExon:  "1st_EXON",
	AreaPromoter:   "PROMOTER",
	AreaTTS:        "TTS",
	AreaIntron:     "INTRON",
	AreaGeneBody:   "GENE_BODY",
	AreaUpstream:   "UPSTREAM",
	AreaDownstream: "DOWNSTREAM",
}

// AllAreas lists every zone in default priority order.
var AllAreas = []Area{
	AreaTSS, AreaFirstExon, AreaPromoter, AreaTTS,
	AreaIntron, AreaGeneBody, AreaUpstream, AreaDownstream,
}

// String returns the label used in rules and output.
func (a Area) String() string {
	if a < 0 || int(a) >= len(areaNames) {
		return fmt.Sprintf("Area(%d)", int(a))
	}
	return areaNames[a]
}

// ParseArea converts a label such as "1st_EXON". Matching is case-sensitive.
func ParseArea(s string) (Area, error) {
	for i, name := range areaNames {
		if name == s {
			return Area(i), nil
		}
	}
	return 0, fmt.Errorf("unknown area %q", s)
}

// NotApplicable marks a PctgArea for zones without a fixed width.
const NotApplicable = -1.0

// Candidate is one region-to-transcript observation.
type Candidate struct {
	Start       int64        // matched span of the region
	End         int64        // matched span of the region (inclusive)
	Strand      cache.Strand // gene strand
	Exon        string       // exon or intron number, comma-joined after a gene merge
	Area        Area
	Transcript  string // transcript id, comma-joined after a gene merge
	Gene        string
	Distance    int64   // 0 on overlap, negative 5' of the transcript, positive 3'
	PctgRegion  float64 // share of the region inside this zone
	PctgArea    float64 // share of the zone covered, or NotApplicable
	TSSDistance int64   // region midpoint relative to the TSS, in transcription direction
}

func pct(n, total int64) float64 {
	return float64(n) / float64(total) * 100
}
