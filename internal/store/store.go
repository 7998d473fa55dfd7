// Package store records bulk lookup results in a local SQLite file, one run
// per CLI invocation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"

	"github.com/yourusername/postcodes-io/postcode"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	total      INTEGER NOT NULL,
	found      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	position       INTEGER NOT NULL,
	query          TEXT NOT NULL,
	postcode_key   TEXT NOT NULL,
	found          INTEGER NOT NULL,
	latitude       REAL,
	longitude      REAL,
	admin_district TEXT,
	payload        TEXT,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_results_postcode ON results(postcode_key);
`

// Run summarises one recorded batch.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Total     int
	Found     int
}

// Record is one stored lookup result.
type Record struct {
	Query string
	// Key is the normalised query, see postcode.Normalise.
	Key    string
	Result *postcode.Result
}

// Store is a SQLite backed results sink.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock stamping runs.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps PRAGMAs and writes on the same handle.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init database: %w", err)
		}
	}

	s := &Store{db: db, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores results as a new run and returns its ID.
func (s *Store) SaveRun(ctx context.Context, results []postcode.BulkLookupResult) (uuid.UUID, error) {
	id := uuid.New()
	found := 0
	for _, r := range results {
		if r.Result != nil {
			found++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, total, found) VALUES (?, ?, ?, ?)`,
		id.String(), s.clock.Now().UTC().Format(timeLayout), len(results), found,
	); err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, position, query, postcode_key, found, latitude, longitude, admin_district, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()

	for i, r := range results {
		var (
			lat, lon sql.NullFloat64
			district sql.NullString
			payload  sql.NullString
		)
		if r.Result != nil {
			if r.Result.Latitude != nil {
				lat = sql.NullFloat64{Float64: *r.Result.Latitude, Valid: true}
			}
			if r.Result.Longitude != nil {
				lon = sql.NullFloat64{Float64: *r.Result.Longitude, Valid: true}
			}
			district = sql.NullString{String: r.Result.AdminDistrict, Valid: true}
			b, err := json.Marshal(r.Result)
			if err != nil {
				return uuid.Nil, err
			}
			payload = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id.String(), i, r.Query, postcode.Normalise(r.Query),
			r.Result != nil, lat, lon, district, payload); err != nil {
			return uuid.Nil, fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Runs lists the recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, total, found FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			id, stamp string
		)
		if err := rows.Scan(&id, &stamp, &run.Total, &run.Found); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, stamp); err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Records returns the results of a run in the order they were looked up.
func (s *Store) Records(ctx context.Context, id uuid.UUID) ([]Record, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id.String()).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRun, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT query, postcode_key, payload FROM results WHERE run_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			payload sql.NullString
		)
		if err := rows.Scan(&rec.Query, &rec.Key, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			rec.Result = &postcode.Result{}
			if err := json.Unmarshal([]byte(payload.String), rec.Result); err != nil {
				return nil, fmt.Errorf("decode stored result: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
