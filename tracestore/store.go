// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ TRACE STORE — SQLITE SOAK-RUN EVENT RECORDER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Batched Timer/Task Firing Trace Persistence
//
// Description:
//   Durable record of everything the soak harness fires: one row per event
//   with its tick, kind, id, and label. Inserts go through a prepared
//   statement inside a held transaction, committed every TraceBatchSize rows
//   so the writer never stalls the consumer goroutine on fsync.
//
// Schema:
//   trace_events(seq INTEGER PRIMARY KEY, tick, kind, ref_id, label)
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package tracestore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ypradera/staticsched/constants"
)

// Event kinds recorded in the trace.
const (
	KindTimer    = "timer"
	KindPeriodic = "periodic"
	KindTask     = "task"
)

// Event is one firing observed by the harness.
type Event struct {
	Tick  int64
	Kind  string
	RefID uint32 // scenario timer id, or task priority for tasks
	Label string
}

// Store writes trace events to a sqlite database in batched transactions.
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	insert  *sql.Stmt
	inBatch int
	total   int64
}

// Open creates (or truncates into) a trace database at path. Journaling is
// disabled: a soak trace is disposable and rebuilt on every run, so speed
// wins over crash durability.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tracestore: open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA locking_mode = EXCLUSIVE",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("tracestore: %s: %w", p, err)
		}
	}

	schema := `
	DROP TABLE IF EXISTS trace_events;
	CREATE TABLE trace_events (
		seq    INTEGER PRIMARY KEY AUTOINCREMENT,
		tick   INTEGER NOT NULL,
		kind   TEXT    NOT NULL,
		ref_id INTEGER NOT NULL,
		label  TEXT    NOT NULL
	);
	CREATE INDEX idx_trace_tick ON trace_events(tick);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("tracestore: create schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.beginBatch(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) beginBatch() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("tracestore: begin batch: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO trace_events (tick, kind, ref_id, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("tracestore: prepare insert: %w", err)
	}
	s.tx, s.insert, s.inBatch = tx, stmt, 0
	return nil
}

// Record appends one event, committing the running batch when it reaches
// constants.TraceBatchSize rows.
func (s *Store) Record(ev Event) error {
	if _, err := s.insert.Exec(ev.Tick, ev.Kind, ev.RefID, ev.Label); err != nil {
		return fmt.Errorf("tracestore: insert: %w", err)
	}
	s.total++
	s.inBatch++
	if s.inBatch >= constants.TraceBatchSize {
		return s.Flush()
	}
	return nil
}

// Flush commits the running batch and opens a fresh one.
func (s *Store) Flush() error {
	if s.inBatch == 0 {
		return nil
	}
	s.insert.Close()
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("tracestore: commit batch: %w", err)
	}
	return s.beginBatch()
}

// Total returns the count of events recorded since Open.
func (s *Store) Total() int64 { return s.total }

// Close flushes the final batch and closes the database.
func (s *Store) Close() error {
	flushErr := s.Flush()
	if s.insert != nil {
		s.insert.Close()
	}
	if s.tx != nil {
		s.tx.Rollback()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("tracestore: close: %w", err)
	}
	return flushErr
}

// CountByKind reads back per-kind event totals, for post-run verification.
func CountByKind(path string) (map[string]int64, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tracestore: open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT kind, COUNT(*) FROM trace_events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("tracestore: count query: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("tracestore: scan: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
