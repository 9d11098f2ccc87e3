package cache

import (
	"sort"
)

// Cache holds genes indexed by chromosome.
type Cache struct {
	// genes stores genes per chromosome in load order
	genes map[string][]*Gene
	// maxLengths stores the longest gene span per chromosome
	maxLengths map[string]int64
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		genes:      make(map[string][]*Gene),
		maxLengths: make(map[string]int64),
	}
}

// AddGene adds a gene to the cache and updates the chromosome's maximum length.
func (c *Cache) AddGene(g *Gene) {
	c.genes[g.Chrom] = append(c.genes[g.Chrom], g)
	if l := g.Length(); l > c.maxLengths[g.Chrom] {
		c.maxLengths[g.Chrom] = l
	}
}

// Genes returns the genes of a chromosome in load order.
func (c *Cache) Genes(chrom string) []*Gene {
	return c.genes[chrom]
}

// SortedGenes returns a copy of a chromosome's genes ordered by start.
func (c *Cache) SortedGenes(chrom string) []*Gene {
	genes := append([]*Gene(nil), c.genes[chrom]...)
	sort.SliceStable(genes, func(i, j int) bool {
		return genes[i].Start < genes[j].Start
	})
	return genes
}

// HasChromosome reports whether any gene was loaded for chrom.
func (c *Cache) HasChromosome(chrom string) bool {
	return len(c.genes[chrom]) > 0
}

// MaxGeneLength returns the longest gene span (End - Start) on chrom.
func (c *Cache) MaxGeneLength(chrom string) int64 {
	return c.maxLengths[chrom]
}

// GeneCount returns the total number of genes in the cache.
func (c *Cache) GeneCount() int {
	count := 0
	for _, genes := range c.genes {
		count += len(genes)
	}
	return count
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, genes := range c.genes {
		for _, g := range genes {
			count += len(g.Transcripts)
		}
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.genes))
	for chrom := range c.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
