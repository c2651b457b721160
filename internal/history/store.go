// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed analyses in a local SQLite database
// and builds a full-text index over their narrative text, so past results
// can be listed, searched, and compared across time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

const dbFile = "history.db"

// Store manages the analysis history SQLite database.
type Store struct {
	db         *sql.DB
	historyDir string
	maxResults int
}

// NewStore opens or creates the history database at
// historyDir/history.db, creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		historyDir: cfg.HistoryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			source_file TEXT NOT NULL,
			query TEXT,
			backend TEXT,
			model TEXT,
			elapsed_ms INTEGER,
			report_path TEXT,
			narrative TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS marker_readings (
			analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			marker TEXT NOT NULL,
			value REAL NOT NULL,
			unit TEXT,
			status TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_analysis ON marker_readings(analysis_id)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_marker ON marker_readings(marker)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='analyses_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE analyses_fts USING fts5(narrative, content=analyses, content_rowid=rowid)`,
			`CREATE TRIGGER analyses_ai AFTER INSERT ON analyses BEGIN
				INSERT INTO analyses_fts(rowid, narrative) VALUES (new.rowid, new.narrative);
			END`,
			`CREATE TRIGGER analyses_ad AFTER DELETE ON analyses BEGIN
				INSERT INTO analyses_fts(analyses_fts, rowid, narrative) VALUES('delete', old.rowid, old.narrative);
			END`,
			`CREATE TRIGGER analyses_au AFTER UPDATE ON analyses BEGIN
				INSERT INTO analyses_fts(analyses_fts, rowid, narrative) VALUES('delete', old.rowid, old.narrative);
				INSERT INTO analyses_fts(rowid, narrative) VALUES (new.rowid, new.narrative);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save records a completed analysis and its marker readings. It assigns
// the analysis a UUID if it does not already have one and returns the
// recorded ID.
func (s *Store) Save(ctx context.Context, a *types.Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, source_file, query, backend, model, elapsed_ms, report_path, narrative)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt.UTC().Format(time.RFC3339Nano), a.SourceFile, a.Query,
		a.Backend, a.Model, a.Elapsed.Milliseconds(), a.ReportPath, a.Narrative(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO marker_readings (analysis_id, marker, value, unit, status) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing reading insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range a.Markers.Names() {
		m := a.Markers[name]
		if _, err := stmt.ExecContext(ctx, a.ID, name, m.Value, m.Unit, string(m.Status)); err != nil {
			return "", fmt.Errorf("inserting reading %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return a.ID, nil
}

// Record is one stored analysis. List returns records without Narrative
// and Markers; Get fills everything in.
type Record struct {
	ID         string          `json:"id" yaml:"id"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
	SourceFile string          `json:"source_file" yaml:"source_file"`
	Query      string          `json:"query,omitempty" yaml:"query,omitempty"`
	Backend    string          `json:"backend,omitempty" yaml:"backend,omitempty"`
	Model      string          `json:"model,omitempty" yaml:"model,omitempty"`
	Elapsed    time.Duration   `json:"elapsed" yaml:"elapsed"`
	ReportPath string          `json:"report_path,omitempty" yaml:"report_path,omitempty"`
	Narrative  string          `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Markers    types.MarkerSet `json:"markers,omitempty" yaml:"markers,omitempty"`
}

const recordColumns = `id, created_at, source_file, query, backend, model, elapsed_ms, report_path`

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var (
		r         Record
		createdAt string
		elapsedMS int64
	)
	if err := scan(&r.ID, &createdAt, &r.SourceFile, &r.Query, &r.Backend, &r.Model, &elapsedMS, &r.ReportPath); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}

// List returns stored analyses, most recent first, up to the store's
// result limit.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM analyses ORDER BY created_at DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get returns one analysis with its narrative and marker readings. IDs
// may be abbreviated to a unique prefix; a prefix matching more than
// one analysis is an error.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+`, narrative FROM analyses WHERE id = ? OR id LIKE ? || '%' LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("looking up analysis: %w", err)
	}
	defer rows.Close()

	var matches []Record
	for rows.Next() {
		var (
			r         Record
			createdAt string
			elapsedMS int64
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.SourceFile, &r.Query, &r.Backend, &r.Model,
			&elapsedMS, &r.ReportPath, &r.Narrative); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		r.CreatedAt = t
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("looking up analysis: %w", err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("analysis %s not found", id)
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("analysis id %s is ambiguous, use a longer prefix", id)
	}

	r := matches[0]
	r.Markers, err = s.readings(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) readings(ctx context.Context, analysisID string) (types.MarkerSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT marker, value, unit, status FROM marker_readings WHERE analysis_id = ?`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	set := make(types.MarkerSet)
	for rows.Next() {
		var m types.Marker
		var status string
		if err := rows.Scan(&m.Name, &m.Value, &m.Unit, &status); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		m.Status = types.MarkerStatus(status)
		set[m.Name] = m
	}
	return set, rows.Err()
}

// SearchResult is a record matched by full-text search, with a snippet
// of the matching narrative passage.
type SearchResult struct {
	Record
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 query over the stored narratives, ranked by
// relevance.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.created_at, a.source_file, a.query, a.backend, a.model, a.elapsed_ms, a.report_path,
			snippet(analyses_fts, 0, '', '', '...', 12)
		FROM analyses_fts
		JOIN analyses a ON a.rowid = analyses_fts.rowid
		WHERE analyses_fts MATCH ?
		ORDER BY analyses_fts.rank
		LIMIT ?`, query, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr        SearchResult
			createdAt string
			elapsedMS int64
		)
		if err := rows.Scan(&sr.ID, &createdAt, &sr.SourceFile, &sr.Query, &sr.Backend,
			&sr.Model, &elapsedMS, &sr.ReportPath, &sr.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		sr.CreatedAt = t
		sr.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, sr)
	}
	return results, rows.Err()
}

// TrendPoint is one reading of a marker at a point in time.
type TrendPoint struct {
	AnalysisID string             `json:"analysis_id" yaml:"analysis_id"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
	Value      float64            `json:"value" yaml:"value"`
	Unit       string             `json:"unit,omitempty" yaml:"unit,omitempty"`
	Status     types.MarkerStatus `json:"status" yaml:"status"`
}

// Trend returns every stored reading of one marker in time order, oldest
// first, so values can be compared across reports.
func (s *Store) Trend(ctx context.Context, marker string) ([]TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.analysis_id, a.created_at, r.value, r.unit, r.status
		FROM marker_readings r
		JOIN analyses a ON a.id = r.analysis_id
		WHERE r.marker = ?
		ORDER BY a.created_at ASC`, marker)
	if err != nil {
		return nil, fmt.Errorf("querying trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var (
			p         TrendPoint
			createdAt string
			status    string
		)
		if err := rows.Scan(&p.AnalysisID, &createdAt, &p.Value, &p.Unit, &status); err != nil {
			return nil, fmt.Errorf("scanning trend point: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		p.CreatedAt = t
		p.Status = types.MarkerStatus(status)
		points = append(points, p)
	}
	return points, rows.Err()
}
