package repository

import (
	"context"
	"errors"

	"skilltrack/internal/database"
	"skilltrack/internal/domain/skill"

	"github.com/google/uuid"
)

var (
	ErrUserSkillNotFound = errors.New("user skill not found")
	ErrLedgerUserMissing = errors.New("user not found")
)

type UserSkillReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]skill.UserSkillEntry, error)
	FindByUserAndSkill(ctx context.Context, userID uuid.UUID, skillID uuid.UUID) (skill.UserSkillEntry, error)
}

// UserSkillWriter is only handed out inside a transaction. Writers serialize
// per user through the users.skills_version counter.
type UserSkillWriter interface {
	UserSkillReader

	SkillsVersion(ctx context.Context, userID uuid.UUID) (int64, error)
	AdvanceSkillsVersion(ctx context.Context, userID uuid.UUID, expected int64) error
	SkillExistsByID(ctx context.Context, skillID uuid.UUID) (bool, error)

	Create(ctx context.Context, e skill.UserSkillEntry) error
	AppendHistory(ctx context.Context, entryID uuid.UUID, c skill.LevelChange) error
	Delete(ctx context.Context, entryID uuid.UUID) error
}

type UserSkillRepository interface {
	UserSkillReader
	InTx(ctx context.Context, fn func(w UserSkillWriter) error) error
}

type PostgresUserSkillRepository struct {
	db database.DB
	q  database.Querier
}

func NewPostgresUserSkillRepository(db database.DB) *PostgresUserSkillRepository {
	return &PostgresUserSkillRepository{db: db, q: db}
}

func (r *PostgresUserSkillRepository) InTx(ctx context.Context, fn func(w UserSkillWriter) error) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		return fn(&PostgresUserSkillRepository{db: r.db, q: tx})
	})
}

func (r *PostgresUserSkillRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]skill.UserSkillEntry, error) {
	entries, err := r.queryEntries(ctx,
		`SELECT e.id, e.user_id, e.skill_id, s.name, e.created_at
		 FROM user_skill_entries e
		 JOIN skill_nodes s ON s.id = e.skill_id
		 WHERE e.user_id = $1
		 ORDER BY s.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	history, err := r.queryHistory(ctx,
		`SELECT h.entry_id, h.seq, h.level, h.changed_at, h.changed_by
		 FROM user_skill_level_history h
		 JOIN user_skill_entries e ON e.id = h.entry_id
		 WHERE e.user_id = $1
		 ORDER BY h.entry_id ASC, h.seq ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].History = history[entries[i].ID]
	}
	return entries, nil
}

func (r *PostgresUserSkillRepository) FindByUserAndSkill(ctx context.Context, userID uuid.UUID, skillID uuid.UUID) (skill.UserSkillEntry, error) {
	entries, err := r.queryEntries(ctx,
		`SELECT e.id, e.user_id, e.skill_id, s.name, e.created_at
		 FROM user_skill_entries e
		 JOIN skill_nodes s ON s.id = e.skill_id
		 WHERE e.user_id = $1 AND e.skill_id = $2`,
		userID, skillID,
	)
	if err != nil {
		return skill.UserSkillEntry{}, err
	}
	if len(entries) == 0 {
		return skill.UserSkillEntry{}, ErrUserSkillNotFound
	}
	e := entries[0]

	history, err := r.queryHistory(ctx,
		`SELECT entry_id, seq, level, changed_at, changed_by
		 FROM user_skill_level_history
		 WHERE entry_id = $1
		 ORDER BY seq ASC`,
		e.ID,
	)
	if err != nil {
		return skill.UserSkillEntry{}, err
	}
	e.History = history[e.ID]
	return e, nil
}

func (r *PostgresUserSkillRepository) SkillsVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	var v int64
	if err := r.q.QueryRow(ctx, `SELECT skills_version FROM users WHERE id = $1`, userID).Scan(&v); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return 0, ErrLedgerUserMissing
		}
		return 0, err
	}
	return v, nil
}

func (r *PostgresUserSkillRepository) AdvanceSkillsVersion(ctx context.Context, userID uuid.UUID, expected int64) error {
	n, err := r.q.Exec(ctx,
		`UPDATE users SET skills_version = skills_version + 1 WHERE id = $1 AND skills_version = $2`,
		userID, expected,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresUserSkillRepository) SkillExistsByID(ctx context.Context, skillID uuid.UUID) (bool, error) {
	var exists bool
	row := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM skill_nodes WHERE id = $1)`, skillID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserSkillRepository) Create(ctx context.Context, e skill.UserSkillEntry) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_skill_entries (id, user_id, skill_id, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.UserID, e.SkillID, e.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUniqueViolation):
			return ErrStaleVersion
		case errors.Is(err, database.ErrForeignKeyViolation):
			return ErrSkillNodeNotFound
		default:
			return err
		}
	}
	for _, c := range e.History {
		if err := r.AppendHistory(ctx, e.ID, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresUserSkillRepository) AppendHistory(ctx context.Context, entryID uuid.UUID, c skill.LevelChange) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_skill_level_history (entry_id, seq, level, changed_at, changed_by)
		 VALUES ($1, $2, $3, $4, $5)`,
		entryID, c.Seq, string(c.Level), c.ChangedAt, c.ChangedBy,
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrUniqueViolation):
		return ErrStaleVersion
	case errors.Is(err, database.ErrForeignKeyViolation):
		// the entry was removed by a concurrent write
		return ErrStaleVersion
	default:
		return err
	}
}

func (r *PostgresUserSkillRepository) Delete(ctx context.Context, entryID uuid.UUID) error {
	n, err := r.q.Exec(ctx, `DELETE FROM user_skill_entries WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserSkillNotFound
	}
	return nil
}

func (r *PostgresUserSkillRepository) queryEntries(ctx context.Context, query string, args ...any) ([]skill.UserSkillEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.UserSkillEntry, 0)
	for rows.Next() {
		var e skill.UserSkillEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SkillID, &e.SkillName, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserSkillRepository) queryHistory(ctx context.Context, query string, args ...any) (map[uuid.UUID][]skill.LevelChange, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID][]skill.LevelChange{}
	for rows.Next() {
		var entryID uuid.UUID
		var level string
		var c skill.LevelChange
		if err := rows.Scan(&entryID, &c.Seq, &level, &c.ChangedAt, &c.ChangedBy); err != nil {
			return nil, err
		}
		c.Level = skill.Level(level)
		out[entryID] = append(out[entryID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
