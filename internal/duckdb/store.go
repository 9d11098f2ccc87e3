// Package duckdb loads annotation rows into an in-memory DuckDB database
// for aggregate queries over a finished run.
package duckdb

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages an in-memory DuckDB connection. Nothing is written to disk.
type Store struct {
	db *sql.DB
}

// Open creates an in-memory DuckDB database with the candidates table.
func Open() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS candidates (
		chrom VARCHAR,
		region_start BIGINT,
		region_end BIGINT,
		gene VARCHAR,
		transcript VARCHAR,
		exon VARCHAR,
		area VARCHAR,
		distance BIGINT,
		tss_distance BIGINT,
		pctg_region DOUBLE,
		pctg_area DOUBLE
	)`)
	return err
}
