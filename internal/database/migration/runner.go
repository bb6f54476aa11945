package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"skilltrack/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// lockKey identifies the advisory lock held while migrating.
const lockKey int64 = 0x736b696c6c

// Embedded holds the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Runner applies V<version>__<name>.sql files in version order. FS takes
// precedence over Dir; with neither set, a migrations directory next to the
// executable is used.
type Runner struct {
	FS     fs.FS
	Dir    string
	Logger *logger.Logger
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

// Run applies every pending migration. All statements, including the
// advisory lock, go through one pinned connection so the session lock is
// released on the connection that took it.
func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	migs, err := r.load()
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migration conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	if err := ensureHistoryTable(ctx, conn); err != nil {
		return err
	}
	applied, err := appliedChecksums(ctx, conn)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range migs {
		sum, ok := applied[m.Version]
		if ok {
			if sum != m.Checksum {
				return fmt.Errorf("migration checksum mismatch: version=%d name=%s", m.Version, m.Name)
			}
			continue
		}

		start := time.Now()
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		pending++
		r.log().Info("migration applied", "version", m.Version, "name", m.Name, "took", time.Since(start).String())
	}

	if pending == 0 {
		r.log().Debug("schema up to date", "latest", migs[len(migs)-1].Version)
	}
	return nil
}

func (r Runner) log() *logger.Logger {
	if r.Logger == nil {
		return logger.Nop()
	}
	return r.Logger
}

func (r Runner) load() ([]Migration, error) {
	if r.FS != nil {
		return loadMigrations(r.FS)
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(filepath.Dir(exe), "migrations")
	}
	return loadMigrations(os.DirFS(dir))
}

func loadMigrations(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}

	migs := make([]Migration, 0, len(names))
	for _, name := range names {
		parts := fileRe.FindStringSubmatch(name)
		if parts == nil {
			continue
		}
		version, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		sum := sha256.Sum256([]byte(body))
		migs = append(migs, Migration{
			Version:  version,
			Name:     parts[2],
			Filename: name,
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}
	return migs, nil
}

func ensureHistoryTable(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

func appliedChecksums(ctx context.Context, conn *sql.Conn) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var version int64
		var sum string
		if err := rows.Scan(&version, &sum); err != nil {
			return nil, err
		}
		out[version] = sum
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration failed: version=%d file=%s: %w", m.Version, m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
