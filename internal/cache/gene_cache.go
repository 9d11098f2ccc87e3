package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// GeneCache manages a gob-serialized copy of a parsed GTF on disk:
//
//	{dir}/genes.gob       (serialized genes)
//	{dir}/genes.gob.meta  (GTF fingerprint and id tags)
type GeneCache struct {
	dir string
}

// NewGeneCache creates a gene cache rooted at dir.
func NewGeneCache(dir string) *GeneCache {
	return &GeneCache{dir: dir}
}

func (gc *GeneCache) gobPath() string {
	return filepath.Join(gc.dir, "genes.gob")
}

func (gc *GeneCache) metaPath() string {
	return filepath.Join(gc.dir, "genes.gob.meta")
}

// Valid checks whether the cached genes were built from the same GTF with the same id tags.
func (gc *GeneCache) Valid(gtf FileFingerprint, geneTag, transcriptTag string) bool {
	meta, err := gc.readMeta()
	if err != nil {
		return false
	}

	for k, v := range metaValues(gtf, geneTag, transcriptTag) {
		if meta[k] != v {
			return false
		}
	}

	if _, err := os.Stat(gc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized genes from disk into the cache.
func (gc *GeneCache) Load(c *Cache) error {
	f, err := os.Open(gc.gobPath())
	if err != nil {
		return fmt.Errorf("open gene cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode gene cache: %w", err)
	}

	// Chromosome order does not matter; per-chromosome gene order is preserved.
	for _, genes := range data {
		for _, g := range genes {
			c.AddGene(g)
		}
	}
	return nil
}

// Write serializes all genes from the cache to disk.
func (gc *GeneCache) Write(c *Cache, gtf FileFingerprint, geneTag, transcriptTag string) error {
	if err := os.MkdirAll(gc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data := make(map[string][]*Gene)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.Genes(chrom)
	}

	f, err := os.Create(gc.gobPath())
	if err != nil {
		return fmt.Errorf("create gene cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(gc.gobPath())
		return fmt.Errorf("encode gene cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene cache: %w", err)
	}

	return gc.writeMeta(gtf, geneTag, transcriptTag)
}

func metaValues(gtf FileFingerprint, geneTag, transcriptTag string) map[string]string {
	return map[string]string{
		"gtf_size":       strconv.FormatInt(gtf.Size, 10),
		"gtf_modtime":    gtf.ModTime.UTC().Format(time.RFC3339Nano),
		"gene_tag":       geneTag,
		"transcript_tag": transcriptTag,
	}
}

func (gc *GeneCache) writeMeta(gtf FileFingerprint, geneTag, transcriptTag string) error {
	vals := metaValues(gtf, geneTag, transcriptTag)
	var lines []string
	for _, k := range []string{"gtf_size", "gtf_modtime", "gene_tag", "transcript_tag"} {
		lines = append(lines, k+"="+vals[k])
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(gc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (gc *GeneCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(gc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
