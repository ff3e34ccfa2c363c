// Package sqlstore implements store.Store over database/sql for Postgres
// (through pgx) and SQLite (through modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"leadscout/internal/store"
)

var _ store.Store = (*Store)(nil)

// Dialect captures the few differences between the supported databases.
type Dialect struct {
	Name      string
	Driver    string
	Timestamp string
	numbered  bool // $1, $2 placeholders instead of ?
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Timestamp: "TIMESTAMPTZ", numbered: true}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Timestamp: "TIMESTAMP"}
)

// DialectFor resolves a STORE_DRIVER value.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS searches (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	business_type TEXT NOT NULL,
	location TEXT NOT NULL,
	radius INTEGER NOT NULL,
	status TEXT NOT NULL,
	data_source TEXT,
	fingerprint TEXT NOT NULL DEFAULT '',
	created_at {{ts}} NOT NULL,
	completed_at {{ts}}
)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_user ON searches (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS businesses (
	id TEXT PRIMARY KEY,
	search_id TEXT NOT NULL REFERENCES searches (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	address TEXT,
	phone TEXT,
	website TEXT,
	rating DOUBLE PRECISION CHECK (rating IS NULL OR (rating >= 0 AND rating <= 5)),
	review_count INTEGER NOT NULL DEFAULT 0,
	data_source TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at {{ts}} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_businesses_search ON businesses (search_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	business_id TEXT NOT NULL REFERENCES businesses (id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	rating INTEGER CHECK (rating IS NULL OR (rating >= 1 AND rating <= 5)),
	author_name TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at {{ts}} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews (business_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	business_id TEXT NOT NULL UNIQUE REFERENCES businesses (id) ON DELETE CASCADE,
	problem_type TEXT,
	urgency_score INTEGER CHECK (urgency_score IS NULL OR (urgency_score >= 1 AND urgency_score <= 10)),
	summary TEXT NOT NULL,
	outreach_message TEXT NOT NULL,
	created_at {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS saved_leads (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	business_id TEXT NOT NULL REFERENCES businesses (id) ON DELETE CASCADE,
	status TEXT NOT NULL,
	notes TEXT,
	cold_call_script TEXT,
	contacted_at {{ts}},
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL,
	UNIQUE (user_id, business_id)
)`,
	`CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	services TEXT NOT NULL DEFAULT '[]',
	credits INTEGER NOT NULL DEFAULT 0,
	onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at {{ts}} NOT NULL
)`,
}

// Store runs every query through a single *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New wraps an open database. It does not touch the schema.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

// Open connects with the dialect's driver and applies the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// One writer at a time; avoids SQLITE_BUSY under concurrent analysis inserts.
		db.SetMaxOpenConns(1)
	}
	s := New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{ts}}", s.dialect.Timestamp)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

// rebind rewrites ? placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q execer, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

// wrap maps driver unique violations onto store.ErrConflict.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w: %v", op, store.ErrConflict, err)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")) {
			return fmt.Errorf("%s: %w: %v", op, store.ErrConflict, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// inTx runs fn in a transaction, rolling back on any error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
