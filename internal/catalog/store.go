// Package catalog records conversions and generations in a sqlite
// database so the CLIs can show history and detect unchanged output.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// Conversion is one trace-to-spec conversion
type Conversion struct {
	ID          string
	RunDir      string
	RunName     string
	SpecPath    string
	PhaseCount  int
	EventCount  int
	ConvertedAt time.Time
}

// Generation is one spec-to-code generation
type Generation struct {
	ID          string
	SpecPath    string
	FlowDir     string
	ContentHash string
	FileCount   int
	GeneratedAt time.Time
}

// Store provides SQLite-backed history persistence
type Store struct {
	db *sql.DB
}

// New opens the catalog at dbPath, creating parent directories and the
// schema as needed. ":memory:" opens a private in-memory catalog.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, &domain.IOError{Op: "create directory", Path: filepath.Dir(dbPath), Err: err}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection, so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordConversion stores c, assigning an ID and timestamp when unset
func (s *Store) RecordConversion(c *Conversion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ConvertedAt.IsZero() {
		c.ConvertedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO conversions (id, run_dir, run_name, spec_path, phase_count, event_count, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.RunDir,
		c.RunName,
		c.SpecPath,
		c.PhaseCount,
		c.EventCount,
		c.ConvertedAt,
	)
	if err != nil {
		return fmt.Errorf("recording conversion: %w", err)
	}
	return nil
}

// RecordGeneration stores g, assigning an ID and timestamp when unset
func (s *Store) RecordGeneration(g *Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.GeneratedAt.IsZero() {
		g.GeneratedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO generations (id, spec_path, flow_dir, content_hash, file_count, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		g.ID,
		g.SpecPath,
		g.FlowDir,
		g.ContentHash,
		g.FileCount,
		g.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// ListConversions returns the most recent conversions first. A limit of
// zero or less returns all of them.
func (s *Store) ListConversions(limit int) ([]*Conversion, error) {
	query := `SELECT id, run_dir, run_name, spec_path, phase_count, event_count, converted_at
		FROM conversions ORDER BY converted_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Conversion
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(&c.ID, &c.RunDir, &c.RunName, &c.SpecPath, &c.PhaseCount, &c.EventCount, &c.ConvertedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ListGenerations returns the most recent generations first. A limit of
// zero or less returns all of them.
func (s *Store) ListGenerations(limit int) ([]*Generation, error) {
	query := `SELECT id, spec_path, flow_dir, content_hash, file_count, generated_at
		FROM generations ORDER BY generated_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// LastGeneration returns the latest generation written to flowDir
func (s *Store) LastGeneration(flowDir string) (*Generation, error) {
	row := s.db.QueryRow(`
		SELECT id, spec_path, flow_dir, content_hash, file_count, generated_at
		FROM generations WHERE flow_dir = ?
		ORDER BY generated_at DESC, rowid DESC LIMIT 1
	`, flowDir)

	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("generation for %s: %w", flowDir, domain.ErrNotFound)
	}
	return g, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGeneration(row scanner) (*Generation, error) {
	var g Generation
	if err := row.Scan(&g.ID, &g.SpecPath, &g.FlowDir, &g.ContentHash, &g.FileCount, &g.GeneratedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
