package annotate

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
)

// GeneSource defines the interface for looking up the genes of a chromosome.
type GeneSource interface {
	SortedGenes(chrom string) []*cache.Gene
	MaxGeneLength(chrom string) int64
}

// Annotator matches regions to genes chromosome by chromosome.
type Annotator struct {
	genes  GeneSource
	cfg    *Config
	logger *zap.Logger
}

// NewAnnotator creates a new annotator. cfg must already be validated.
func NewAnnotator(genes GeneSource, cfg *Config) *Annotator {
	return &Annotator{
		genes:  genes,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// AnnotateChromosome annotates the regions of one chromosome. Regions must
// be sorted by start. A chromosome without genes yields no results.
func (a *Annotator) AnnotateChromosome(chrom string, regions []*bed.Region) ([]RegionResult, error) {
	if !sort.SliceIsSorted(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start }) {
		return nil, fmt.Errorf("regions on %s are not sorted by start", chrom)
	}

	genes := a.genes.SortedGenes(chrom)
	if len(genes) == 0 {
		a.logger.Warn("chromosome not found in genes, skipping its regions",
			zap.String("chrom", chrom),
			zap.Int("regions", len(regions)))
		return nil, nil
	}

	results := MatchRegions(regions, genes, a.cfg, a.genes.MaxGeneLength(chrom))
	a.logger.Debug("matched chromosome",
		zap.String("chrom", chrom),
		zap.Int("regions", len(regions)),
		zap.Int("genes", len(genes)))
	return results, nil
}

// AnnotateAll annotates every chromosome in rs using workers goroutines
// (0 means NumCPU) and writes candidates in sorted chromosome order.
func (a *Annotator) AnnotateAll(rs *bed.Regions, workers int, writer CandidateWriter) error {
	chroms := rs.Chromosomes()
	items := make(chan WorkItem, len(chroms))
	for i, chrom := range chroms {
		items <- WorkItem{Seq: i, Chrom: chrom, Regions: rs.ByChrom[chrom]}
	}
	close(items)

	regionCount, rowCount := 0, 0
	err := OrderedCollect(a.ParallelMatch(items, workers), func(r WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("annotate %s: %w", r.Chrom, r.Err)
		}
		for _, res := range r.Results {
			regionCount++
			for i := range res.Candidates {
				if err := writer.Write(res.Region, &res.Candidates[i]); err != nil {
					return fmt.Errorf("write candidate: %w", err)
				}
				rowCount++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Info("annotation finished",
		zap.Int("chromosomes", len(chroms)),
		zap.Int("regions", regionCount),
		zap.Int("rows", rowCount))

	return writer.Flush()
}

// CandidateWriter defines the interface for writing candidates.
type CandidateWriter interface {
	WriteHeader() error
	Write(r *bed.Region, c *Candidate) error
	Flush() error
}
