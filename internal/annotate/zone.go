package annotate

import (
	"math"

	"github.com/inodb/rgmatch/internal/cache"
)

// Anchor is the exon a flank is measured from.
type Anchor struct {
	Start  int64
	End    int64
	Strand cache.Strand
}

func anchorOf(e cache.Exon, strand cache.Strand) Anchor {
	return Anchor{Start: e.Start, End: e.End, Strand: strand}
}

// ZoneHit is the part of a region that falls in one zone.
type ZoneHit struct {
	Area       Area
	Start      int64   // matched span, original coordinates
	End        int64   // matched span, original coordinates (inclusive)
	PctgRegion float64 // share of the classified span
	PctgArea   float64 // share of the zone width, or NotApplicable
}

// band is a fixed-width zone; bands are laid out leftwards from the anchor point.
type band struct {
	area  Area
	width int64
}

// ClassifyStart places [start, end] in the TSS, PROMOTER and UPSTREAM zones
// in front of a transcriptionally first exon.
func ClassifyStart(start, end int64, anchor Anchor, tss, promoter int64) []ZoneHit {
	bands := []band{{AreaTSS, tss}, {AreaPromoter, promoter}}
	if anchor.Strand == cache.Negative {
		return classifyMirrored(start, end, anchor.End, bands, AreaUpstream)
	}
	return classifyFlank(start, end, anchor.Start, bands, AreaUpstream)
}

// ClassifyEnd places [start, end] in the TTS and DOWNSTREAM zones behind a
// transcriptionally last exon.
func ClassifyEnd(start, end int64, anchor Anchor, tts int64) []ZoneHit {
	bands := []band{{AreaTTS, tts}}
	if anchor.Strand == cache.Positive {
		return classifyMirrored(start, end, anchor.End, bands, AreaDownstream)
	}
	return classifyFlank(start, end, anchor.Start, bands, AreaDownstream)
}

// mirror reflects [start, end] about axis.
func mirror(start, end, axis int64) (int64, int64) {
	return 2*axis - end, 2*axis - start
}

func classifyMirrored(start, end, axis int64, bands []band, open Area) []ZoneHit {
	ms, me := mirror(start, end, axis)
	hits := classifyFlank(ms, me, axis, bands, open)
	for i := range hits {
		hits[i].Start, hits[i].End = mirror(hits[i].Start, hits[i].End, axis)
	}
	return hits
}

// classifyFlank works in the canonical orientation: the anchor point p is
// the low end of the exon and zones extend leftwards from p-1. The first
// band covers [p-w1, p-1], the next [p-w1-w2, p-w1-1], and the open zone
// takes everything further left. Zero-width bands are skipped.
func classifyFlank(start, end, p int64, bands []band, open Area) []ZoneHit {
	if end < start {
		return nil
	}
	length := end - start + 1

	var hits []ZoneHit
	hi := p - 1
	for _, b := range bands {
		if b.width <= 0 {
			continue
		}
		lo := hi - b.width + 1
		if s, e, ok := intersect(start, end, lo, hi); ok {
			hits = append(hits, ZoneHit{
				Area:       b.area,
				Start:      s,
				End:        e,
				PctgRegion: pct(e-s+1, length),
				PctgArea:   pct(e-s+1, b.width),
			})
		}
		hi = lo - 1
	}

	if s, e, ok := intersect(start, end, math.MinInt64, hi); ok {
		hits = append(hits, ZoneHit{
			Area:       open,
			Start:      s,
			End:        e,
			PctgRegion: pct(e-s+1, length),
			PctgArea:   NotApplicable,
		})
	}
	return hits
}

// intersect clips [s1, e1] to [s2, e2].
func intersect(s1, e1, s2, e2 int64) (int64, int64, bool) {
	s, e := max(s1, s2), min(e1, e2)
	return s, e, s <= e
}
