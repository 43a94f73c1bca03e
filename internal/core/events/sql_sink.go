package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQL drivers accepted by NewSQLSink.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS amm_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		kind       TEXT    NOT NULL,
		pool_id    INTEGER NOT NULL,
		payload    TEXT    NOT NULL,
		emitted_at TEXT    NOT NULL
	)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS amm_events (
		id         BIGSERIAL   PRIMARY KEY,
		kind       TEXT        NOT NULL,
		pool_id    BIGINT      NOT NULL,
		payload    JSONB       NOT NULL,
		emitted_at TIMESTAMPTZ NOT NULL
	)`,
}

var inserts = map[string]string{
	DriverSQLite:   `INSERT INTO amm_events (kind, pool_id, payload, emitted_at) VALUES (?, ?, ?, ?)`,
	DriverPostgres: `INSERT INTO amm_events (kind, pool_id, payload, emitted_at) VALUES ($1, $2, $3, $4)`,
}

var selects = map[string]string{
	DriverSQLite:   `SELECT id, kind, pool_id, payload, emitted_at FROM amm_events WHERE (? = 0 OR pool_id = ?) ORDER BY id DESC LIMIT ?`,
	DriverPostgres: `SELECT id, kind, pool_id, payload, emitted_at FROM amm_events WHERE ($1 = 0 OR pool_id = $2) ORDER BY id DESC LIMIT $3`,
}

// StoredEvent is a row of the events table.
type StoredEvent struct {
	ID        int64
	Kind      Kind
	PoolID    uint32
	Payload   json.RawMessage
	EmittedAt time.Time
}

// SQLSink stores events in an amm_events table.
type SQLSink struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// NewSQLSink opens dsn with driver and ensures the events table exists.
func NewSQLSink(ctx context.Context, driver, dsn string) (*SQLSink, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported events driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open events database: %w", err)
	}
	if driver == DriverSQLite {
		// Single writer; avoids SQLITE_BUSY from the pool
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}

	return &SQLSink{db: db, driver: driver, now: time.Now}, nil
}

// Emit inserts the batch in one transaction.
func (s *SQLSink) Emit(ctx context.Context, evs []Event) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin events tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, inserts[s.driver])
	if err != nil {
		return fmt.Errorf("prepare events insert: %w", err)
	}
	defer stmt.Close()

	at := s.now().UTC()
	for _, e := range evs {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		var emitted any = at
		if s.driver == DriverSQLite {
			emitted = at.Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, string(e.Kind()), int64(e.Pool()), string(payload), emitted); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events tx: %w", err)
	}
	return nil
}

// Recent returns the newest events, optionally filtered by pool (0 = all).
func (s *SQLSink) Recent(ctx context.Context, poolID uint32, limit int) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, selects[s.driver], int64(poolID), int64(poolID), limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var (
			ev      StoredEvent
			kind    string
			pool    int64
			payload string
			emitted any
		)
		if err := rows.Scan(&ev.ID, &kind, &pool, &payload, &emitted); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = Kind(kind)
		ev.PoolID = uint32(pool)
		ev.Payload = json.RawMessage(payload)
		ev.EmittedAt, err = parseEmitted(emitted)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func parseEmitted(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected emitted_at type %T", v)
	}
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
