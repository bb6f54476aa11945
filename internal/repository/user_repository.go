package repository

import (
	"context"
	"errors"

	"skilltrack/internal/database"
	"skilltrack/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, role, skills_version, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Role, u.SkillsVersion, u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return user.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.getOne(ctx, `SELECT id, email, role, skills_version, created_at FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `SELECT id, email, role, skills_version, created_at FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (user.User, error) {
	var u user.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Role, &u.SkillsVersion, &u.CreatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
