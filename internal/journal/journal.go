// Package journal records normalized errors in a local SQLite database. It
// is one concrete implementation of the report.Reporter capability: the rest
// of the library only ever calls LogError and works the same with the no-op
// reporter when no journal is configured.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dotcommander/faultline/internal/apperr"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Journal is a SQLite-backed error log.
type Journal struct {
	db *sql.DB
}

// Record is one journaled failure.
type Record struct {
	ID         int64          `json:"id"`
	Kind       string         `json:"kind"`
	StatusCode int            `json:"status_code,omitempty"`
	Message    string         `json:"message"`
	Endpoint   string         `json:"endpoint,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Open creates or opens the journal database at dbPath (":memory:" for
// tests) and runs pending migrations.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", normalizeDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	// Single connection: the journal is a low-volume local log and
	// modernc.org/sqlite behaves best without connection churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run journal migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false)
	goose.SetLogger(goose.NopLogger())

	// goose uses "sqlite3" as its dialect name regardless of the driver;
	// modernc.org/sqlite registers as "sqlite".
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func normalizeDSN(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") {
		return dbPath
	}
	if dbPath == ":memory:" {
		return "file::memory:?cache=shared"
	}
	// mode=rwc => read/write/create.
	return "file:" + dbPath + "?mode=rwc"
}

// LogError implements report.Reporter. It is fire-and-forget: storage
// failures are logged to slog and never surface to the caller, and it never
// panics.
func (j *Journal) LogError(err error, ctx map[string]any) {
	if err == nil || j == nil || j.db == nil {
		return
	}
	defer func() { _ = recover() }()

	kind := string(apperr.KindUnknown)
	status := 0
	endpoint := ""
	message := err.Error()

	var norm *apperr.Error
	if errors.As(err, &norm) {
		kind = string(norm.Kind)
		status = norm.StatusCode
		endpoint = norm.Endpoint
		message = norm.Message
	}

	ctxJSON := "{}"
	if len(ctx) > 0 {
		if b, marshalErr := json.Marshal(ctx); marshalErr == nil {
			ctxJSON = string(b)
		}
	}

	_, execErr := j.db.ExecContext(context.Background(), `
		INSERT INTO errors (kind, status_code, message, endpoint, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, kind, status, message, endpoint, ctxJSON, time.Now().UTC().Format(time.RFC3339Nano))
	if execErr != nil {
		slog.Warn("journal insert failed", "error", execErr.Error())
	}
}

// Recent returns up to limit journaled errors, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, status_code, message, endpoint, context, created_at
		FROM errors
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		var ctxJSON, createdAt string
		if err := rows.Scan(&r.ID, &r.Kind, &r.StatusCode, &r.Message, &r.Endpoint, &ctxJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if ctxJSON != "" && ctxJSON != "{}" {
			_ = json.Unmarshal([]byte(ctxJSON), &r.Context)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return out, nil
}

// Prune deletes journal entries older than the retention window and returns
// the number removed.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	res, err := j.db.ExecContext(ctx, `DELETE FROM errors WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
