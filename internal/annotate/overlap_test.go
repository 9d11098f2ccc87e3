package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
)

// testGene builds a single-transcript gene named id with transcript TRANS_<id>.
func testGene(id string, strand cache.Strand, exons ...[2]int64) *cache.Gene {
	g := cache.NewGene(id, "chr1", strand)
	g.AddTranscript(testTranscript("TRANS_"+id, strand, exons...))
	g.CalculateSize()
	return g
}

func testTranscript(id string, strand cache.Strand, exons ...[2]int64) *cache.Transcript {
	t := cache.NewTranscript(id)
	for _, e := range exons {
		t.AddExon(e[0], e[1])
	}
	t.Renumber(strand)
	t.CalculateSize()
	return t
}

func testRegion(start, end int64) *bed.Region {
	return &bed.Region{Chrom: "chr1", Start: start, End: end}
}

type wantCandidate struct {
	area       Area
	start, end int64
	exon       string
	pctgRegion float64
	pctgArea   float64
}

func assertCandidates(t *testing.T, want []wantCandidate, got []Candidate) {
	t.Helper()
	require.Len(t, got, len(want), "candidates: %+v", got)
	for i, w := range want {
		assert.Equal(t, w.area, got[i].Area, "candidate %d area", i)
		assert.Equal(t, w.start, got[i].Start, "candidate %d start", i)
		assert.Equal(t, w.end, got[i].End, "candidate %d end", i)
		assert.Equal(t, w.exon, got[i].Exon, "candidate %d exon", i)
		assert.InDelta(t, w.pctgRegion, got[i].PctgRegion, 1e-9, "candidate %d pctg region", i)
		assert.InDelta(t, w.pctgArea, got[i].PctgArea, 1e-9, "candidate %d pctg area", i)
	}
}

func TestMatchRegionToGenes_Intron(t *testing.T) {
	g := testGene("G1", cache.Positive, [2]int64{100, 200}, [2]int64{400, 500})

	got := MatchRegionToGenes(testRegion(250, 350), []*cache.Gene{g}, DefaultConfig())

	assertCandidates(t, []wantCandidate{
		{AreaIntron, 250, 350, "1", 100, 101.0 / 199 * 100},
	}, got)
	assert.Equal(t, int64(0), got[0].Distance)
	assert.Equal(t, int64(200), got[0].TSSDistance)
	assert.Equal(t, "G1", got[0].Gene)
	assert.Equal(t, "TRANS_G1", got[0].Transcript)
	assert.Equal(t, cache.Positive, got[0].Strand)
}

func TestMatchRegionToGenes_SpansSeveralExons(t *testing.T) {
	g := testGene("G1", cache.Positive, [2]int64{100, 200}, [2]int64{400, 500}, [2]int64{700, 800})

	got := MatchRegionToGenes(testRegion(450, 750), []*cache.Gene{g}, DefaultConfig())

	// GENE_BODY repeats once per exon; the labels keep the rows apart.
	assertCandidates(t, []wantCandidate{
		{AreaGeneBody, 450, 500, "2", 51.0 / 301 * 100, 51.0 / 101 * 100},
		{AreaIntron, 501, 699, "2", 199.0 / 301 * 100, 100},
		{AreaGeneBody, 700, 750, "3", 51.0 / 301 * 100, 51.0 / 101 * 100},
	}, got)
}

func TestMatchRegionToGenes_FirstExonWithTSS(t *testing.T) {
	g := testGene("G1", cache.Positive, [2]int64{100, 200}, [2]int64{400, 500})

	got := MatchRegionToGenes(testRegion(90, 150), []*cache.Gene{g}, DefaultConfig())

	assertCandidates(t, []wantCandidate{
		{AreaTSS, 90, 99, "1", 10.0 / 61 * 100, 10.0 / 200 * 100},
		{AreaFirstExon, 100, 150, "1", 51.0 / 61 * 100, 51.0 / 101 * 100},
	}, got)
}

func TestMatchRegionToGenes_ExonNumberingFollowsStrand(t *testing.T) {
	exons := [][2]int64{{100, 200}, {400, 500}}

	t.Run("forward strand second exon is gene body", func(t *testing.T) {
		g := testGene("G1", cache.Positive, exons...)
		got := MatchRegionToGenes(testRegion(380, 450), []*cache.Gene{g}, DefaultConfig())
		assertCandidates(t, []wantCandidate{
			{AreaIntron, 380, 399, "1", 20.0 / 71 * 100, 20.0 / 199 * 100},
			{AreaGeneBody, 400, 450, "2", 51.0 / 71 * 100, 51.0 / 101 * 100},
		}, got)
	})

	t.Run("reverse strand rightmost exon is first", func(t *testing.T) {
		g := testGene("G1", cache.Negative, exons...)
		got := MatchRegionToGenes(testRegion(380, 450), []*cache.Gene{g}, DefaultConfig())
		assertCandidates(t, []wantCandidate{
			{AreaIntron, 380, 399, "1", 20.0 / 71 * 100, 20.0 / 199 * 100},
			{AreaFirstExon, 400, 450, "1", 51.0 / 71 * 100, 51.0 / 101 * 100},
		}, got)
	})
}

func TestMatchRegionToGenes_SingleProximityZone(t *testing.T) {
	t.Run("region overhangs exon end", func(t *testing.T) {
		g := testGene("G1", cache.Positive, [2]int64{51, 150})
		got := MatchRegionToGenes(testRegion(100, 200), []*cache.Gene{g}, DefaultConfig())
		assertCandidates(t, []wantCandidate{
			{AreaFirstExon, 100, 150, "1", 51.0 / 101 * 100, 51},
			{AreaDownstream, 151, 200, "1", 50.0 / 101 * 100, NotApplicable},
		}, got)
	})

	t.Run("region contains exon", func(t *testing.T) {
		g := testGene("G1", cache.Positive, [2]int64{1050, 1200})
		got := MatchRegionToGenes(testRegion(1000, 1300), []*cache.Gene{g}, DefaultConfig())
		assertCandidates(t, []wantCandidate{
			{AreaTSS, 1000, 1049, "1", 50.0 / 301 * 100, 25},
			{AreaFirstExon, 1050, 1200, "1", 151.0 / 301 * 100, 100},
			{AreaDownstream, 1201, 1300, "1", 100.0 / 301 * 100, NotApplicable},
		}, got)
	})
}

func TestMatchRegionToGenes_Distance(t *testing.T) {
	tests := []struct {
		name        string
		strand      cache.Strand
		start, end  int64
		area        Area
		distance    int64
		tssDistance int64
	}{
		{"forward gene, region 5'", cache.Positive, 100, 200, AreaPromoter, -800, -850},
		{"forward gene, region 3'", cache.Positive, 2500, 2600, AreaDownstream, 500, 1550},
		{"reverse gene, region 5'", cache.Negative, 2500, 2600, AreaPromoter, -500, -550},
		{"reverse gene, region 3'", cache.Negative, 100, 200, AreaDownstream, 800, 1850},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGene("G1", tt.strand, [2]int64{1000, 2000})
			got := MatchRegionToGenes(testRegion(tt.start, tt.end), []*cache.Gene{g}, DefaultConfig())
			require.Len(t, got, 1)
			assert.Equal(t, tt.area, got[0].Area)
			assert.Equal(t, tt.distance, got[0].Distance)
			assert.Equal(t, tt.tssDistance, got[0].TSSDistance)
			assert.InDelta(t, 100.0, got[0].PctgRegion, 1e-9)
		})
	}
}

func TestMatchRegionToGenes_BeyondLookback(t *testing.T) {
	g := testGene("G1", cache.Positive, [2]int64{50000, 51000})
	assert.Empty(t, MatchRegionToGenes(testRegion(100, 200), []*cache.Gene{g}, DefaultConfig()))

	cfg := DefaultConfig()
	cfg.Distance = 60000
	assert.NotEmpty(t, MatchRegionToGenes(testRegion(100, 200), []*cache.Gene{g}, cfg))
}

func TestMatchRegionToGenes_InvertedRegion(t *testing.T) {
	g := testGene("G1", cache.Positive, [2]int64{100, 200})
	assert.Nil(t, MatchRegionToGenes(testRegion(300, 250), []*cache.Gene{g}, DefaultConfig()))
}

func TestMatchRegionToGenes_TranscriptsAndGenesInOrder(t *testing.T) {
	g1 := cache.NewGene("GENE002", "chr1", cache.Negative)
	g1.AddTranscript(testTranscript("TX002A", cache.Negative, [2]int64{5600, 6000}, [2]int64{5000, 5300}))
	g1.AddTranscript(testTranscript("TX002B", cache.Negative, [2]int64{5800, 6000}, [2]int64{5000, 5300}))
	g1.CalculateSize()
	g2 := testGene("GENE003", cache.Positive, [2]int64{9000, 9500})

	got := MatchRegionToGenes(testRegion(6100, 6150), []*cache.Gene{g1, g2}, DefaultConfig())

	require.Len(t, got, 3)
	for i, tx := range []string{"TX002A", "TX002B"} {
		assert.Equal(t, tx, got[i].Transcript)
		assert.Equal(t, AreaTSS, got[i].Area)
		assert.Equal(t, "1", got[i].Exon)
		assert.InDelta(t, 25.5, got[i].PctgArea, 1e-9)
		assert.Equal(t, int64(-100), got[i].Distance)
	}
	assert.Equal(t, "GENE003", got[2].Gene)
	assert.Equal(t, AreaUpstream, got[2].Area)
	assert.Equal(t, int64(-2850), got[2].Distance)
}

func TestMatchRegionToGenes_Invariants(t *testing.T) {
	genes := []*cache.Gene{
		testGene("FWD", cache.Positive, [2]int64{3000, 3400}, [2]int64{4000, 4200}, [2]int64{5000, 6000}),
		testGene("REV", cache.Negative, [2]int64{3000, 3400}, [2]int64{4000, 4200}, [2]int64{5000, 6000}),
	}
	cfg := DefaultConfig()
	cfg.TTS = 300

	type zoneKey struct {
		area Area
		exon string
	}

	for start := int64(1); start < 9000; start += 211 {
		for _, length := range []int64{1, 90, 700, 4000} {
			r := testRegion(start, start+length-1)
			for _, g := range genes {
				got := MatchRegionToGenes(r, []*cache.Gene{g}, cfg)

				var covered int64
				seen := make(map[zoneKey]bool)
				proximity := make(map[Area]int)
				for _, c := range got {
					assert.GreaterOrEqual(t, c.PctgRegion, 0.0)
					assert.LessOrEqual(t, c.PctgRegion, 100.0)
					if c.PctgArea != NotApplicable {
						assert.GreaterOrEqual(t, c.PctgArea, 0.0)
						assert.LessOrEqual(t, c.PctgArea, 100.0)
					}
					assert.GreaterOrEqual(t, c.Start, r.Start)
					assert.LessOrEqual(t, c.End, r.End)
					covered += c.End - c.Start + 1

					k := zoneKey{c.Area, c.Exon}
					assert.False(t, seen[k], "duplicate %s/%s for %s %s", c.Area, c.Exon, g.ID, r.ID())
					seen[k] = true

					switch c.Area {
					case AreaTSS, AreaPromoter, AreaTTS, AreaUpstream, AreaDownstream:
						proximity[c.Area]++
					}
				}
				for a, n := range proximity {
					assert.Equal(t, 1, n, "%s repeated for %s %s", a, g.ID, r.ID())
				}
				if len(got) > 0 {
					assert.Equal(t, r.Length(), covered, "%s %s", g.ID, r.ID())
				}
			}
		}
	}
}
