package seeder

import (
	"context"
	"errors"
	"strings"
	"time"

	"skilltrack/internal/domain/user"

	"github.com/google/uuid"
)

// AdminSeeder makes sure one account with the elevated role exists.
type AdminSeeder struct {
	Users user.Repository
	Email string
	Role  string

	// Created receives the resolved account, new or existing.
	Created func(u user.User)
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	if email == "" {
		return errors.New("admin email is required")
	}
	role := strings.ToLower(strings.TrimSpace(s.Role))
	if role == "" {
		role = "admin"
	}

	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrNotFound):
		u = user.User{ID: uuid.New(), Email: email, Role: role, CreatedAt: time.Now().UTC()}
		if err := s.Users.Create(ctx, u); err != nil {
			if !errors.Is(err, user.ErrEmailTaken) {
				return err
			}
			// created concurrently by another seeder run
			if u, err = s.Users.GetByEmail(ctx, email); err != nil {
				return err
			}
		}
	default:
		return err
	}

	if s.Created != nil {
		s.Created(u)
	}
	return nil
}
