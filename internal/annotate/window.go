package annotate

import (
	"sort"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
)

// RegionResult pairs a region with its final candidates.
type RegionResult struct {
	Region     *bed.Region
	Candidates []Candidate
}

// SearchStartIndex returns the first index whose gene starts at or after
// bound, or len(genes) when every gene starts before it.
func SearchStartIndex(genes []*cache.Gene, bound int64) int {
	return sort.Search(len(genes), func(i int) bool {
		return genes[i].Start >= bound
	})
}

// MatchRegions annotates the regions of one chromosome. Regions must be
// sorted by start and genes by start; maxGeneLength is the longest gene
// span on the chromosome. Every region gets a result, possibly without
// candidates.
//
// A gene starting before region.Start - lookback - maxGeneLength cannot
// reach the region, and that bound only grows, so the first gene worth
// looking at is tracked with a pointer that never moves back.
func MatchRegions(regions []*bed.Region, genes []*cache.Gene, cfg *Config, maxGeneLength int64) []RegionResult {
	lookback := cfg.MaxLookback()
	results := make([]RegionResult, 0, len(regions))

	first := 0
	var window []*cache.Gene
	for _, r := range regions {
		first += SearchStartIndex(genes[first:], r.Start-lookback-maxGeneLength)

		window = window[:0]
		upper := r.End + lookback
		for _, g := range genes[first:] {
			if g.Start > upper {
				break
			}
			if g.End+lookback < r.Start {
				continue
			}
			window = append(window, g)
		}

		results = append(results, RegionResult{
			Region:     r,
			Candidates: ProcessCandidates(MatchRegionToGenes(r, window, cfg), cfg),
		})
	}
	return results
}
