package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"skilltrack/internal/config"
	"skilltrack/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{name: "no rows", in: pgx.ErrNoRows, want: database.ErrNoRows},
		{name: "unique", in: &pgconn.PgError{Code: "23505", ConstraintName: "skill_nodes_name_key"}, want: database.ErrUniqueViolation},
		{name: "foreign key", in: &pgconn.PgError{Code: "23503"}, want: database.ErrForeignKeyViolation},
		{name: "serialization", in: &pgconn.PgError{Code: "40001"}, want: database.ErrSerialization},
		{name: "deadlock", in: &pgconn.PgError{Code: "40P01"}, want: database.ErrSerialization},
		{name: "admin shutdown", in: &pgconn.PgError{Code: "57P01"}, want: database.ErrUnavailable},
		{name: "deadline", in: fmt.Errorf("query: %w", context.DeadlineExceeded), want: database.ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.in)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if !errors.Is(got, tc.in) {
				t.Fatalf("expected original error to stay in chain, got %v", got)
			}
		})
	}

	if classify(nil) != nil {
		t.Fatalf("expected nil for nil")
	}

	plain := errors.New("syntax error")
	if got := classify(plain); got != plain {
		t.Fatalf("expected unclassified error to pass through, got %v", got)
	}
}

func TestDSN(t *testing.T) {
	got := dsn(config.DatabaseConfig{DBHost: " db ", DBPort: "5432", DBUser: "app", DBPassword: "p w", DBName: "skills"})
	want := `host=db port=5432 user=app password='p w' dbname=skills`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = dsn(config.DatabaseConfig{DBHost: "db", DBSSLMode: "disable"})
	if got != "host=db sslmode=disable" {
		t.Fatalf("expected empty parts to be skipped, got %q", got)
	}

	if got := quoteDSNValue(`it's`); got != `'it\'s'` {
		t.Fatalf("expected escaped quote, got %q", got)
	}
}

func TestNilPool(t *testing.T) {
	var p *Pool
	if err := p.Ping(context.Background()); !errors.Is(err, errNilPool) {
		t.Fatalf("expected errNilPool, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close on nil pool: %v", err)
	}

	var s statements
	if _, err := s.Exec(context.Background(), "SELECT 1"); !errors.Is(err, errNilPool) {
		t.Fatalf("expected errNilPool from Exec, got %v", err)
	}
	if err := s.QueryRow(context.Background(), "SELECT 1").Scan(); !errors.Is(err, errNilPool) {
		t.Fatalf("expected errNilPool from QueryRow, got %v", err)
	}
}
