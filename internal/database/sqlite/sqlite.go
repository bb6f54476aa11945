package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"skilltrack/internal/database"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB is a database.DB backed by an embedded SQLite file. Repositories write
// Postgres-style $N placeholders; they are rebound to SQLite's ?N form here.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path. Writers take the lock
// when the transaction begins, so concurrent writers serialize instead of
// failing on lock upgrade.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_txlock=immediate"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", classify(err))
	}
	return &DB{db: db}, nil
}

// ApplySchema creates every table, index and trigger the service needs.
func (d *DB) ApplySchema(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("nil db")
	}
	if _, err := d.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", classify(err))
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("nil db")
	}
	return classify(d.db.PingContext(ctx))
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if d == nil || d.db == nil {
		return 0, fmt.Errorf("nil db")
	}
	return execOn(ctx, d.db, query, args)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if d == nil || d.db == nil {
		return nil, fmt.Errorf("nil db")
	}
	return queryOn(ctx, d.db, query, args)
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if d == nil || d.db == nil {
		return errRow{err: fmt.Errorf("nil db")}
	}
	return sqlRow{row: d.db.QueryRowContext(ctx, rebind(query), bindArgs(args)...)}
}

func (d *DB) Begin(ctx context.Context) (database.Tx, error) {
	if d == nil || d.db == nil {
		return nil, fmt.Errorf("nil db")
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return sqlTx{tx: tx}, nil
}

func (d *DB) SQLDB() *sql.DB {
	if d == nil {
		return nil
	}
	return d.db
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execOn(ctx context.Context, q execQuerier, query string, args []any) (int64, error) {
	res, err := q.ExecContext(ctx, rebind(query), bindArgs(args)...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func queryOn(ctx context.Context, q execQuerier, query string, args []any) (database.Rows, error) {
	rows, err := q.QueryContext(ctx, rebind(query), bindArgs(args)...)
	if err != nil {
		return nil, classify(err)
	}
	return sqlRows{rows: rows}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execOn(ctx, t.tx, query, args)
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return queryOn(ctx, t.tx, query, args)
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return sqlRow{row: t.tx.QueryRowContext(ctx, rebind(query), bindArgs(args)...)}
}

func (t sqlTx) Commit(_ context.Context) error {
	return classify(t.tx.Commit())
}

func (t sqlTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Close() {
	_ = r.rows.Close()
}

func (r sqlRows) Next() bool {
	return r.rows.Next()
}

func (r sqlRows) Scan(dest ...any) error {
	return scanInto(r.rows.Scan, dest)
}

func (r sqlRows) Err() error {
	return classify(r.rows.Err())
}

type sqlRow struct {
	row *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	return scanInto(r.row.Scan, dest)
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error {
	return r.err
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// rebind turns $1 into ?1. Numbered parameters keep their position even when a
// placeholder repeats or appears out of order.
func rebind(query string) string {
	return placeholderRe.ReplaceAllString(query, "?${1}")
}

// timeLayout sorts lexically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func bindArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			out[i] = v.UTC().Format(timeLayout)
		case *time.Time:
			if v == nil {
				out[i] = nil
				continue
			}
			out[i] = v.UTC().Format(timeLayout)
		default:
			out[i] = a
		}
	}
	return out
}

// scanInto reads TEXT timestamps back into *time.Time destinations; every
// other destination is handed to database/sql unchanged.
func scanInto(scan func(dest ...any) error, dest []any) error {
	type pending struct {
		target *time.Time
		raw    *any
	}
	var times []pending
	args := make([]any, len(dest))
	for i, d := range dest {
		if t, ok := d.(*time.Time); ok {
			var raw any
			times = append(times, pending{target: t, raw: &raw})
			args[i] = &raw
			continue
		}
		args[i] = d
	}

	if err := scan(args...); err != nil {
		return classify(err)
	}

	for _, p := range times {
		t, err := parseTime(*p.raw)
		if err != nil {
			return err
		}
		*p.target = t
	}
	return nil
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case []byte:
		return parseTimeString(string(t))
	case string:
		return parseTimeString(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time value %q", s)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", database.ErrNoRows, err)
	case errors.Is(err, sqlite3.CONSTRAINT_UNIQUE), errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY):
		return fmt.Errorf("%w: %w", database.ErrUniqueViolation, err)
	case errors.Is(err, sqlite3.CONSTRAINT_FOREIGNKEY), isRestrictViolation(err):
		return fmt.Errorf("%w: %w", database.ErrForeignKeyViolation, err)
	case errors.Is(err, sqlite3.BUSY), errors.Is(err, sqlite3.LOCKED):
		return fmt.Errorf("%w: %w", database.ErrSerialization, err)
	case errors.Is(err, sqlite3.CANTOPEN), errors.Is(err, sqlite3.IOERR), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", database.ErrUnavailable, err)
	}
	return err
}

// isRestrictViolation reports a delete blocked by ON DELETE RESTRICT. SQLite
// raises it as a trigger constraint, the same code our own RAISE(ABORT)
// triggers use, so the message tells them apart.
func isRestrictViolation(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_TRIGGER) && strings.Contains(err.Error(), "FOREIGN KEY")
}
