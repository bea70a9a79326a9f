package journal

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"
)

var ErrUnknownDriver = errors.New("unknown journal driver")

// Entry is one recorded run of the interpreter.
type Entry struct {
	ID          int64
	Session     string
	Digest      string
	Source      string
	Status      string
	Output      string
	Diagnostics string
	CreatedAt   time.Time
}

type dialect struct {
	createTable string
	placeholder func(n int) string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

var dialects = map[string]dialect{
	"sqlite3": {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	digest TEXT NOT NULL,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	output TEXT NOT NULL,
	diagnostics TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`,
		placeholder: questionMark,
	},
	"mysql": {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	session VARCHAR(36) NOT NULL,
	digest CHAR(64) NOT NULL,
	source LONGTEXT NOT NULL,
	status VARCHAR(16) NOT NULL,
	output LONGTEXT NOT NULL,
	diagnostics LONGTEXT NOT NULL,
	created_at BIGINT NOT NULL
)`,
		placeholder: questionMark,
	},
	"postgres": {
		createTable: `CREATE TABLE IF NOT EXISTS runs (
	id BIGSERIAL PRIMARY KEY,
	session TEXT NOT NULL,
	digest TEXT NOT NULL,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	output TEXT NOT NULL,
	diagnostics TEXT NOT NULL,
	created_at BIGINT NOT NULL
)`,
		placeholder: dollar,
	},
}

// Drivers lists the database/sql driver names a journal can be opened with.
func Drivers() []string {
	return []string{"sqlite3", "mysql", "postgres"}
}

// Journal records interpreter runs in a SQL table. A Journal belongs to one session,
// identified by a random UUID, and is not safe for concurrent use.
type Journal struct {
	db      *sql.DB
	driver  string
	dialect dialect
	session string
}

// Open connects to dsn with the named driver and creates the runs table if needed.
func Open(ctx context.Context, driver, dsn string) (*Journal, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s journal: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s journal: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal table: %w", err)
	}

	j := &Journal{
		db:      db,
		driver:  driver,
		dialect: d,
		session: uuid.NewString(),
	}
	slog.Debug("journal opened",
		slog.String("driver", driver),
		slog.String("session", j.session))
	return j, nil
}

func (j *Journal) Session() string {
	return j.session
}

// Digest returns the hex encoded blake3-256 hash of source.
func Digest(source string) string {
	h := blake3.New()
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Record stores entry. Session, Digest and CreatedAt are filled in when empty. The
// stored entry, with its assigned ID, is returned.
func (j *Journal) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Session == "" {
		entry.Session = j.session
	}
	if entry.Digest == "" {
		entry.Digest = Digest(entry.Source)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	columns := []string{"session", "digest", "source", "status", "output", "diagnostics", "created_at"}
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = j.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO runs (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.Join(params, ", "))
	args := []any{
		entry.Session,
		entry.Digest,
		entry.Source,
		entry.Status,
		entry.Output,
		entry.Diagnostics,
		entry.CreatedAt.UnixNano(),
	}

	// lib/pq does not support LastInsertId
	if j.driver == "postgres" {
		query += " RETURNING id"
		if err := j.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
			return entry, fmt.Errorf("failed to record run: %w", err)
		}
		return entry, nil
	}

	result, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return entry, fmt.Errorf("failed to record run: %w", err)
	}
	if entry.ID, err = result.LastInsertId(); err != nil {
		return entry, fmt.Errorf("failed to read run id: %w", err)
	}
	return entry, nil
}

// Recent returns up to n entries of any session, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, session, digest, source, status, output, diagnostics, created_at
FROM runs ORDER BY id DESC LIMIT %s`, j.dialect.placeholder(1))

	rows, err := j.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Session, &e.Digest, &e.Source, &e.Status, &e.Output, &e.Diagnostics, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return entries, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
