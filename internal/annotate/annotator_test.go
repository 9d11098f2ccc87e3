package annotate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
)

type row struct {
	region string
	cand   Candidate
}

type recordingWriter struct {
	rows     []row
	flushed  bool
	failOn   int
	writeErr error
}

func (w *recordingWriter) WriteHeader() error { return nil }

func (w *recordingWriter) Write(r *bed.Region, c *Candidate) error {
	if w.writeErr != nil && len(w.rows) == w.failOn {
		return w.writeErr
	}
	w.rows = append(w.rows, row{region: r.ID(), cand: *c})
	return nil
}

func (w *recordingWriter) Flush() error {
	w.flushed = true
	return nil
}

func (w *recordingWriter) find(region, gene string) []Candidate {
	var out []Candidate
	for _, r := range w.rows {
		if r.region == region && r.cand.Gene == gene {
			out = append(out, r.cand)
		}
	}
	return out
}

func loadSample(t *testing.T) (*cache.Cache, *bed.Regions) {
	t.Helper()

	c := cache.New()
	require.NoError(t, cache.NewGTFLoader("../../testdata/sample.gtf").Load(c))

	p, err := bed.NewParser("../../testdata/sample.bed")
	require.NoError(t, err)
	defer p.Close()
	rs, err := bed.ReadAll(p)
	require.NoError(t, err)
	return c, rs
}

func TestAnnotator_SampleExonLevel(t *testing.T) {
	c, rs := loadSample(t)
	w := &recordingWriter{}

	require.NoError(t, NewAnnotator(c, DefaultConfig()).AnnotateAll(rs, 2, w))

	assert.True(t, w.flushed)
	assert.Len(t, w.rows, 17)

	// Rows follow chromosome then region order.
	assert.Equal(t, "chr1_1050_1100", w.rows[0].region)
	assert.Equal(t, "chr2_3400_3500", w.rows[len(w.rows)-1].region)

	got := w.find("chr1_1050_1100", "GENE001")
	require.Len(t, got, 1)
	assert.Equal(t, AreaFirstExon, got[0].Area)
	assert.InDelta(t, 51.0/201*100, got[0].PctgArea, 1e-9)

	got = w.find("chr1_1300_1400", "GENE001")
	require.Len(t, got, 1)
	assert.Equal(t, AreaIntron, got[0].Area)
	assert.Equal(t, "1", got[0].Exon)

	got = w.find("chr1_1050_1100", "GENE002")
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, AreaDownstream, c.Area)
		assert.Equal(t, "2", c.Exon)
		assert.Equal(t, int64(3900), c.Distance)
	}

	got = w.find("chr1_8900_8950", "GENE003")
	require.Len(t, got, 1)
	assert.Equal(t, AreaTSS, got[0].Area)
	assert.InDelta(t, 25.5, got[0].PctgArea, 1e-9)
	assert.Equal(t, int64(-50), got[0].Distance)

	got = w.find("chr2_3400_3500", "GENE004")
	require.Len(t, got, 1)
	assert.Equal(t, AreaTSS, got[0].Area)
	assert.Equal(t, "1", got[0].Exon)
	assert.InDelta(t, 50.5, got[0].PctgArea, 1e-9)
	assert.Equal(t, int64(-100), got[0].Distance)

	for _, r := range w.rows {
		assert.NotEqual(t, "chr3_100_200", r.region)
	}
}

func TestAnnotator_SampleGeneLevel(t *testing.T) {
	c, rs := loadSample(t)
	cfg := DefaultConfig()
	cfg.Level = LevelGene
	w := &recordingWriter{}

	require.NoError(t, NewAnnotator(c, cfg).AnnotateAll(rs, 0, w))

	assert.Len(t, w.rows, 13)

	got := w.find("chr1_6100_6150", "GENE002")
	require.Len(t, got, 1)
	assert.Equal(t, AreaTSS, got[0].Area)
	assert.Equal(t, "TX002A,TX002B", got[0].Transcript)
	assert.Equal(t, "1", got[0].Exon)
	assert.InDelta(t, 25.5, got[0].PctgArea, 1e-9)

	got = w.find("chr1_8900_8950", "GENE002")
	require.Len(t, got, 1)
	assert.Equal(t, AreaUpstream, got[0].Area)
	assert.Equal(t, int64(-2900), got[0].Distance)
}

func TestAnnotator_WorkerCountDoesNotChangeOutput(t *testing.T) {
	c, rs := loadSample(t)

	w1 := &recordingWriter{}
	require.NoError(t, NewAnnotator(c, DefaultConfig()).AnnotateAll(rs, 1, w1))
	w8 := &recordingWriter{}
	require.NoError(t, NewAnnotator(c, DefaultConfig()).AnnotateAll(rs, 8, w8))

	assert.Equal(t, w1.rows, w8.rows)
}

func TestAnnotator_MissingChromosomeWarns(t *testing.T) {
	c, rs := loadSample(t)
	core, logs := observer.New(zapcore.WarnLevel)

	ann := NewAnnotator(c, DefaultConfig())
	ann.SetLogger(zap.New(core))
	require.NoError(t, ann.AnnotateAll(rs, 1, &recordingWriter{}))

	entries := logs.FilterField(zap.String("chrom", "chr3")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestAnnotator_WriteErrorStops(t *testing.T) {
	c, rs := loadSample(t)
	errDisk := errors.New("disk full")
	w := &recordingWriter{failOn: 3, writeErr: errDisk}

	err := NewAnnotator(c, DefaultConfig()).AnnotateAll(rs, 2, w)
	assert.ErrorIs(t, err, errDisk)
	assert.Len(t, w.rows, 3)
	assert.False(t, w.flushed)
}

func TestAnnotator_AnnotateChromosome(t *testing.T) {
	c, rs := loadSample(t)
	ann := NewAnnotator(c, DefaultConfig())

	res, err := ann.AnnotateChromosome("chr1", rs.ByChrom["chr1"])
	require.NoError(t, err)
	assert.Len(t, res, 4)

	res, err = ann.AnnotateChromosome("chrUn", rs.ByChrom["chr1"])
	require.NoError(t, err)
	assert.Nil(t, res)

	unsorted := []*bed.Region{rs.ByChrom["chr1"][1], rs.ByChrom["chr1"][0]}
	_, err = ann.AnnotateChromosome("chr1", unsorted)
	assert.Error(t, err)
}
