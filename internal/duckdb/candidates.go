package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/rgmatch/internal/annotate"
	"github.com/inodb/rgmatch/internal/bed"
)

// Row is one output row: a region and one of its final candidates.
type Row struct {
	Region    *bed.Region
	Candidate annotate.Candidate
}

// AreaCount summarises the rows reported in one area.
type AreaCount struct {
	Area    string
	Rows    int64
	Regions int64 // distinct regions
	Genes   int64 // distinct genes
}

// WriteRows batch-inserts rows into the candidates table using the Appender API.
func (s *Store) WriteRows(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "candidates")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		c := &r.Candidate
		if err := appender.AppendRow(
			r.Region.Chrom, r.Region.Start, r.Region.End,
			c.Gene, c.Transcript, c.Exon, c.Area.String(),
			c.Distance, c.TSSDistance, c.PctgRegion, c.PctgArea,
		); err != nil {
			return fmt.Errorf("append candidate: %w", err)
		}
	}

	return appender.Flush()
}

// Count returns the number of loaded rows.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&n); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return n, nil
}

// AreaSummary returns per-area counts ordered by row count, largest first.
func (s *Store) AreaSummary() ([]AreaCount, error) {
	rows, err := s.db.Query(`SELECT
		area,
		COUNT(*) AS n_rows,
		COUNT(DISTINCT chrom || ':' || CAST(region_start AS VARCHAR) || '-' || CAST(region_end AS VARCHAR)) AS n_regions,
		COUNT(DISTINCT gene) AS n_genes
		FROM candidates
		GROUP BY area
		ORDER BY n_rows DESC, area`)
	if err != nil {
		return nil, fmt.Errorf("query area summary: %w", err)
	}
	defer rows.Close()

	var out []AreaCount
	for rows.Next() {
		var ac AreaCount
		if err := rows.Scan(&ac.Area, &ac.Rows, &ac.Regions, &ac.Genes); err != nil {
			return nil, fmt.Errorf("scan area summary: %w", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate area summary: %w", err)
	}
	return out, nil
}
