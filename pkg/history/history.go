// Package history keeps a local SQLite log of the searches issued from this
// front end: the query, how it ended, how many records came back and how
// long the backend took. Record contents are never stored.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/stusearch/pkg/db"
	"github.com/rubiojr/stusearch/pkg/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var logger = log.ForService("history")

// Outcome of a search.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeServerError    Outcome = "server_error"
	OutcomeTransportError Outcome = "transport_error"
)

// Entry is one issued search.
type Entry struct {
	ID          int64
	Session     string
	Query       string
	Outcome     Outcome
	ResultCount int
	Latency     time.Duration
	CreatedAt   time.Time
}

// Store persists entries in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	n, err := db.NewMigrationManager(s.db, migrationsFS, "migrations").ApplyPendingMigrations(context.Background())
	if err != nil {
		return fmt.Errorf("migrating history database: %w", err)
	}
	if n > 0 {
		logger.Debugf("applied %d migrations", n)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (session, query, outcome, result_count, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Session, e.Query, string(e.Outcome), e.ResultCount, e.Latency.Milliseconds(), e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, query, outcome, result_count, latency_ms, created_at
		 FROM searches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			outcome   string
			latencyMS int64
			createdMS int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Query, &outcome, &e.ResultCount, &latencyMS, &createdMS); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Outcome = Outcome(outcome)
		e.Latency = time.Duration(latencyMS) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdMS)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats summarizes the log.
type Stats struct {
	Total      int
	ByOutcome  map[Outcome]int
	AvgLatency time.Duration
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByOutcome: make(map[Outcome]int)}
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM searches GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("querying history stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning history stats: %w", err)
		}
		st.ByOutcome[Outcome(outcome)] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `SELECT AVG(latency_ms) FROM searches WHERE outcome != ?`, string(OutcomeTransportError)).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("querying average latency: %w", err)
	}
	if avg.Valid {
		st.AvgLatency = time.Duration(avg.Float64 * float64(time.Millisecond))
	}
	return st, nil
}
