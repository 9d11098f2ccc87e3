package annotate

import (
	"strconv"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
)

// MatchRegionToGenes returns the raw candidates of one region against the
// genes of its window, in gene and transcript order.
func MatchRegionToGenes(r *bed.Region, genes []*cache.Gene, cfg *Config) []Candidate {
	if r.End < r.Start {
		return nil
	}

	var out []Candidate
	for _, g := range genes {
		for _, t := range g.Transcripts {
			out = appendTranscriptCandidates(out, r, g, t, cfg)
		}
	}
	return out
}

// appendTranscriptCandidates splits the region into the part left of the
// transcript, the exonic and intronic parts, and the part right of it.
// The flanks are classified once each, so a proximity zone appears at most
// once per transcript. Only proximity zones are unique: a region spanning
// several exons or introns gets one GENE_BODY, 1st_EXON or INTRON candidate
// per exon or intron, told apart by their exon labels. Candidates are
// appended left to right.
func appendTranscriptCandidates(out []Candidate, r *bed.Region, g *cache.Gene, t *cache.Transcript, cfg *Config) []Candidate {
	n := len(t.Exons)
	if n == 0 {
		return out
	}
	first, last := t.Exons[0], t.Exons[n-1]
	txStart, txEnd := first.Start, last.End

	var gap int64
	switch {
	case r.End < txStart:
		gap = txStart - r.End
	case r.Start > txEnd:
		gap = r.Start - txEnd
	}
	if gap > cfg.MaxLookback() {
		return out
	}

	// Negative when the region lies 5' of the transcript.
	distance := gap
	leftIs5Prime := g.Strand == cache.Positive
	if (r.End < txStart) == leftIs5Prime && gap > 0 {
		distance = -gap
	}

	tssDistance := r.Midpoint() - txStart
	if g.Strand == cache.Negative {
		tssDistance = txEnd - r.Midpoint()
	}

	regionLen := r.Length()
	base := Candidate{
		Strand:      g.Strand,
		Transcript:  t.ID,
		Gene:        g.ID,
		Distance:    distance,
		TSSDistance: tssDistance,
	}
	emit := func(area Area, start, end int64, exon string, pctgArea float64) {
		c := base
		c.Area = area
		c.Start, c.End = start, end
		c.Exon = exon
		c.PctgRegion = pct(end-start+1, regionLen)
		c.PctgArea = pctgArea
		out = append(out, c)
	}
	emitHits := func(hits []ZoneHit, exon cache.Exon) {
		for _, h := range hits {
			emit(h.Area, h.Start, h.End, exon.Label(), h.PctgArea)
		}
	}

	firstExon, lastExon := t.FirstExon(g.Strand), t.LastExon(g.Strand)

	// Left flank: 5' for forward genes, 3' for reverse genes.
	if r.Start < txStart {
		s, e := r.Start, min(r.End, txStart-1)
		if g.Strand == cache.Positive {
			emitHits(ClassifyStart(s, e, anchorOf(firstExon, g.Strand), cfg.TSS, cfg.Promoter), firstExon)
		} else {
			emitHits(ClassifyEnd(s, e, anchorOf(lastExon, g.Strand), cfg.TTS), lastExon)
		}
	}

	for i, exon := range t.Exons {
		if s, e, ok := intersect(r.Start, r.End, exon.Start, exon.End); ok {
			area := AreaGeneBody
			if exon.Number == 1 {
				area = AreaFirstExon
			}
			emit(area, s, e, exon.Label(), pct(e-s+1, exon.Length()))
		}

		if i == n-1 {
			break
		}
		next := t.Exons[i+1]
		intronStart, intronEnd := exon.End+1, next.Start-1
		if intronEnd < intronStart {
			continue
		}
		if s, e, ok := intersect(r.Start, r.End, intronStart, intronEnd); ok {
			// Intron k lies between exons k and k+1 in transcription order.
			number := min(exon.Number, next.Number)
			emit(AreaIntron, s, e, strconv.Itoa(number), pct(e-s+1, intronEnd-intronStart+1))
		}
	}

	// Right flank: 3' for forward genes, 5' for reverse genes.
	if r.End > txEnd {
		s, e := max(r.Start, txEnd+1), r.End
		if g.Strand == cache.Positive {
			emitHits(ClassifyEnd(s, e, anchorOf(lastExon, g.Strand), cfg.TTS), lastExon)
		} else {
			emitHits(ClassifyStart(s, e, anchorOf(firstExon, g.Strand), cfg.TSS, cfg.Promoter), firstExon)
		}
	}

	return out
}
