// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"skilltrack/internal/database/sqlite"
	"skilltrack/internal/domain/user"
	"skilltrack/internal/repository"

	"github.com/google/uuid"
)

// OpenSQLite returns an embedded store with the schema applied. It is closed
// when the test ends.
func OpenSQLite(t *testing.T) *sqlite.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "skilltrack.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.ApplySchema(ctx); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role and returns it.
func CreateUser(t *testing.T, db *sqlite.DB, role string) user.User {
	t.Helper()

	id := uuid.New()
	u := user.User{
		ID:        id,
		Email:     id.String()[:8] + "@example.test",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := repository.NewPostgresUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
