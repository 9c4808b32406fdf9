// Package sqlite implements persistent storage for accounts, the meal
// catalog, orders and the credit ledger on an embedded SQLite database.
//
// Every balance-affecting business operation is a single method here that
// runs inside one transaction: the order write, the balance mutation and
// the ledger append commit or roll back together.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the pooled database handle. It is constructed once at startup
// and passed down explicitly; there is no package-level connection state.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Pass ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{db: sqlDB}
	if err := db.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying pool.
func (db *DB) Close() error { return db.db.Close() }

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Customer and admin accounts
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'active',
			credits       INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
			street        TEXT,
			city          TEXT,
			province      TEXT,
			postal_code   TEXT,
			country       TEXT,
			phone         TEXT,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			verify_code   TEXT,
			verify_expiry TEXT,
			verified_at   TEXT,
			reset_code    TEXT,
			reset_expiry  TEXT,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)`,

		// Login sessions
		`CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id)`,

		// Meal catalog
		`CREATE TABLE IF NOT EXISTS meals (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			image_url   TEXT DEFAULT '',
			description TEXT DEFAULT '',
			calories    INTEGER,
			protein     INTEGER,
			carbs       INTEGER,
			fat         INTEGER,
			tags_json   TEXT NOT NULL DEFAULT '[]',
			fixed_day   TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,

		// Weekly day→meal assignments; one row per (day, week, year)
		`CREATE TABLE IF NOT EXISTS weekly_assignments (
			day        TEXT NOT NULL,
			week       INTEGER NOT NULL,
			year       INTEGER NOT NULL,
			meal_id    TEXT NOT NULL REFERENCES meals(id),
			active     INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL,
			UNIQUE(day, week, year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_week ON weekly_assignments(year, week)`,

		// Orders
		`CREATE TABLE IF NOT EXISTS orders (
			id              TEXT PRIMARY KEY,
			account_id      TEXT NOT NULL REFERENCES accounts(id),
			selections_json TEXT NOT NULL,
			credit_cost     INTEGER NOT NULL CHECK (credit_cost > 0),
			street          TEXT NOT NULL,
			city            TEXT NOT NULL,
			province        TEXT NOT NULL,
			postal_code     TEXT NOT NULL,
			country         TEXT NOT NULL,
			instructions    TEXT DEFAULT '',
			phone           TEXT DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'pending',
			confirmed_at    TEXT,
			delivered_at    TEXT,
			cancelled_at    TEXT,
			refunded_at     TEXT,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,

		// Append-only credit ledger; no UPDATE or DELETE is ever issued here.
		// order_id links debits and refunds to the order that caused them;
		// NULL for admin adjustments.
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id          TEXT PRIMARY KEY,
			account_id  TEXT NOT NULL REFERENCES accounts(id),
			order_id    TEXT REFERENCES orders(id),
			type        TEXT NOT NULL,
			amount      INTEGER NOT NULL CHECK (amount > 0),
			description TEXT DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_order ON ledger_entries(order_id)`,

		// Atomic ID sequences; replaces scan-for-max generation, which is
		// unsafe under concurrent writers
		`CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	}
}

// Migrate applies all schema migrations.
func (db *DB) Migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Transactions & Sequences ───────────────────────────────────────────────

// withTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// nextID allocates the next value of the named sequence inside the
// caller's transaction. The first allocation returns base; every later
// one returns the previous value plus one.
func nextID(tx *sql.Tx, name string, base int64) (int64, error) {
	var value int64
	err := tx.QueryRow(`
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value
	`, name, base).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", name, err)
	}
	return value, nil
}

// ─── Time Helpers ───────────────────────────────────────────────────────────

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func formatNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return parseTime(s.String)
}
