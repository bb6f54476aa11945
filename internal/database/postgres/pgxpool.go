package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"skilltrack/internal/config"
	"skilltrack/internal/database"
	"skilltrack/internal/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
)

var errNilPool = errors.New("postgres pool not initialised")

// pgxQuerier is the statement surface shared by *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// statements adapts a pgxQuerier to database.Querier and classifies errors.
type statements struct {
	q pgxQuerier
}

func (s statements) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s.q == nil {
		return 0, errNilPool
	}
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (s statements) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if s.q == nil {
		return nil, errNilPool
	}
	r, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return pgxRows{rows: r}, nil
}

func (s statements) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if s.q == nil {
		return errRow{err: errNilPool}
	}
	return pgxRow{row: s.q.QueryRow(ctx, query, args...)}
}

type Pool struct {
	statements
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Connect opens a pgx pool and verifies it with a ping. Failed statements
// are reported through log at warn level.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (database.DB, error) {
	pcfg, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, err
	}
	applyPoolSettings(pcfg, cfg)
	if log != nil {
		pcfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   queryLogger(log),
			LogLevel: tracelog.LogLevelWarn,
		}
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, classify(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, classify(err)
	}

	return &Pool{statements: statements{q: p}, pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func dsn(cfg config.DatabaseConfig) string {
	pairs := [][2]string{
		{"host", strings.TrimSpace(cfg.DBHost)},
		{"port", strings.TrimSpace(cfg.DBPort)},
		{"user", strings.TrimSpace(cfg.DBUser)},
		{"password", cfg.DBPassword},
		{"dbname", strings.TrimSpace(cfg.DBName)},
		{"sslmode", strings.TrimSpace(cfg.DBSSLMode)},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		parts = append(parts, p[0]+"="+quoteDSNValue(p[1]))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes keyword/value connection string values that contain
// spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func applyPoolSettings(pcfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
}

func queryLogger(log *logger.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		kv := make([]interface{}, 0, len(data)*2)
		for k, v := range data {
			if k == "args" {
				continue
			}
			kv = append(kv, k, v)
		}
		kv = append(kv, "level", level.String())
		log.Warn("pgx "+msg, kv...)
	})
}

func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errNilPool
	}
	return classify(p.pool.Ping(ctx))
}

func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	if p.sqlDB != nil {
		_ = p.sqlDB.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	if p == nil || p.pool == nil {
		return nil, errNilPool
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return pgxTx{statements: statements{q: tx}, tx: tx}, nil
}

// SQLDB exposes the pool through database/sql for the migration runner.
func (p *Pool) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.sqlDB
}

type pgxTx struct {
	statements
	tx pgx.Tx
}

func (t pgxTx) Commit(ctx context.Context) error {
	return classify(t.tx.Commit(ctx))
}

func (t pgxTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

type pgxRows struct {
	rows pgx.Rows
}

func (r pgxRows) Close()                 { r.rows.Close() }
func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return classify(r.rows.Scan(dest...)) }
func (r pgxRows) Err() error             { return classify(r.rows.Err()) }

type pgxRow struct {
	row pgx.Row
}

func (r pgxRow) Scan(dest ...any) error {
	return classify(r.row.Scan(dest...))
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error {
	return r.err
}

// classify tags driver errors with the store-neutral error classes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", database.ErrNoRows, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s: %w", database.ErrUniqueViolation, pgErr.ConstraintName, err)
		case "23503":
			return fmt.Errorf("%w: %s: %w", database.ErrForeignKeyViolation, pgErr.ConstraintName, err)
		case "40001", "40P01":
			return fmt.Errorf("%w: %w", database.ErrSerialization, err)
		case "53300", "57P01", "57P02", "57P03":
			return fmt.Errorf("%w: %w", database.ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		errors.As(err, &connErr),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", database.ErrUnavailable, err)
	}
	return err
}
