package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"skilltrack/internal/database"
	"skilltrack/internal/domain/skill"

	"github.com/google/uuid"
)

var (
	ErrSkillNodeNotFound = errors.New("skill node not found")
	ErrSkillNameTaken    = errors.New("skill name taken")
	ErrStaleVersion      = errors.New("stale version")
)

type SkillReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (skill.Node, error)
	FindByName(ctx context.Context, name string) (skill.Node, error)
	ListAll(ctx context.Context) ([]skill.Node, error)
	ListRoots(ctx context.Context) ([]skill.Node, error)
	ChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	Count(ctx context.Context) (int, error)
}

// SkillWriter is only handed out inside a transaction. Every row write is a
// compare-and-swap on the version read earlier in the same transaction.
type SkillWriter interface {
	SkillReader

	CatalogRevision(ctx context.Context) (int64, error)
	AdvanceCatalogRevision(ctx context.Context, expected int64) error
	NextSeq(ctx context.Context) (int64, error)

	Insert(ctx context.Context, n skill.Node) error
	Rename(ctx context.Context, id uuid.UUID, name string, expectedVersion int64, at time.Time) error
	SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, attachSeq int64, expectedVersion int64, at time.Time) error
	Touch(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
	DeleteEntriesForSkill(ctx context.Context, id uuid.UUID) (int64, error)
}

type SkillRepository interface {
	SkillReader
	InTx(ctx context.Context, fn func(w SkillWriter) error) error
}

type PostgresSkillRepository struct {
	db database.DB
	q  database.Querier
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db, q: db}
}

func (r *PostgresSkillRepository) InTx(ctx context.Context, fn func(w SkillWriter) error) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		return fn(&PostgresSkillRepository{db: r.db, q: tx})
	})
}

const skillNodeColumns = `id, name, parent_id, created_seq, attach_seq, version, created_at, updated_at`

func scanSkillNode(row database.Row) (skill.Node, error) {
	var n skill.Node
	var parent uuid.NullUUID
	if err := row.Scan(&n.ID, &n.Name, &parent, &n.CreatedSeq, &n.AttachSeq, &n.Version, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return skill.Node{}, err
	}
	if parent.Valid {
		p := parent.UUID
		n.ParentID = &p
	}
	return n, nil
}

func (r *PostgresSkillRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.Node, error) {
	n, err := scanSkillNode(r.q.QueryRow(ctx, `SELECT `+skillNodeColumns+` FROM skill_nodes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return skill.Node{}, ErrSkillNodeNotFound
		}
		return skill.Node{}, err
	}
	children, err := r.ChildIDs(ctx, id)
	if err != nil {
		return skill.Node{}, err
	}
	n.ChildIDs = children
	return n, nil
}

func (r *PostgresSkillRepository) FindByName(ctx context.Context, name string) (skill.Node, error) {
	n, err := scanSkillNode(r.q.QueryRow(ctx, `SELECT `+skillNodeColumns+` FROM skill_nodes WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return skill.Node{}, ErrSkillNodeNotFound
		}
		return skill.Node{}, err
	}
	children, err := r.ChildIDs(ctx, n.ID)
	if err != nil {
		return skill.Node{}, err
	}
	n.ChildIDs = children
	return n, nil
}

func (r *PostgresSkillRepository) ListAll(ctx context.Context) ([]skill.Node, error) {
	nodes, err := r.queryNodes(ctx, `SELECT `+skillNodeColumns+` FROM skill_nodes ORDER BY created_seq ASC`)
	if err != nil {
		return nil, err
	}

	byParent := map[uuid.UUID][]skill.Node{}
	for _, n := range nodes {
		if n.ParentID != nil {
			byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
		}
	}
	for i := range nodes {
		nodes[i].ChildIDs = orderedChildIDs(byParent[nodes[i].ID])
	}
	return nodes, nil
}

func (r *PostgresSkillRepository) ListRoots(ctx context.Context) ([]skill.Node, error) {
	roots, err := r.queryNodes(ctx, `SELECT `+skillNodeColumns+` FROM skill_nodes WHERE parent_id IS NULL ORDER BY created_seq ASC`)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return roots, nil
	}

	children, err := r.queryNodes(ctx,
		`SELECT `+skillNodeColumns+` FROM skill_nodes
		 WHERE parent_id IN (SELECT id FROM skill_nodes WHERE parent_id IS NULL)
		 ORDER BY attach_seq ASC, created_seq ASC`,
	)
	if err != nil {
		return nil, err
	}

	byParent := map[uuid.UUID][]skill.Node{}
	for _, c := range children {
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}
	for i := range roots {
		roots[i].ChildIDs = orderedChildIDs(byParent[roots[i].ID])
	}
	return roots, nil
}

func (r *PostgresSkillRepository) ChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM skill_nodes WHERE parent_id = $1 ORDER BY attach_seq ASC, created_seq ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var c uuid.UUID
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM skill_nodes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresSkillRepository) CatalogRevision(ctx context.Context) (int64, error) {
	var rev int64
	if err := r.q.QueryRow(ctx, `SELECT revision FROM skill_catalog WHERE id = 1`).Scan(&rev); err != nil {
		return 0, err
	}
	return rev, nil
}

func (r *PostgresSkillRepository) AdvanceCatalogRevision(ctx context.Context, expected int64) error {
	n, err := r.q.Exec(ctx,
		`UPDATE skill_catalog SET revision = revision + 1 WHERE id = 1 AND revision = $1`,
		expected,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresSkillRepository) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	row := r.q.QueryRow(ctx, `UPDATE skill_catalog SET next_seq = next_seq + 1 WHERE id = 1 RETURNING next_seq`)
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *PostgresSkillRepository) Insert(ctx context.Context, n skill.Node) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO skill_nodes (id, name, parent_id, created_seq, attach_seq, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Name, nullableID(n.ParentID), n.CreatedSeq, n.AttachSeq, n.Version, n.CreatedAt, n.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrUniqueViolation):
		return ErrSkillNameTaken
	case errors.Is(err, database.ErrForeignKeyViolation):
		return ErrSkillNodeNotFound
	default:
		return err
	}
}

func (r *PostgresSkillRepository) Rename(ctx context.Context, id uuid.UUID, name string, expectedVersion int64, at time.Time) error {
	n, err := r.q.Exec(ctx,
		`UPDATE skill_nodes SET name = $1, version = version + 1, updated_at = $2
		 WHERE id = $3 AND version = $4`,
		name, at, id, expectedVersion,
	)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return ErrSkillNameTaken
		}
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresSkillRepository) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, attachSeq int64, expectedVersion int64, at time.Time) error {
	n, err := r.q.Exec(ctx,
		`UPDATE skill_nodes SET parent_id = $1, attach_seq = $2, version = version + 1, updated_at = $3
		 WHERE id = $4 AND version = $5`,
		nullableID(parentID), attachSeq, at, id, expectedVersion,
	)
	if err != nil {
		if errors.Is(err, database.ErrForeignKeyViolation) {
			return ErrSkillNodeNotFound
		}
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresSkillRepository) Touch(ctx context.Context, id uuid.UUID, expectedVersion int64, at time.Time) error {
	n, err := r.q.Exec(ctx,
		`UPDATE skill_nodes SET version = version + 1, updated_at = $1 WHERE id = $2 AND version = $3`,
		at, id, expectedVersion,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresSkillRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	n, err := r.q.Exec(ctx, `DELETE FROM skill_nodes WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		// a child that appeared after the subtree was read blocks the delete
		if errors.Is(err, database.ErrForeignKeyViolation) {
			return ErrStaleVersion
		}
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *PostgresSkillRepository) DeleteEntriesForSkill(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.q.Exec(ctx, `DELETE FROM user_skill_entries WHERE skill_id = $1`, id)
}

func (r *PostgresSkillRepository) queryNodes(ctx context.Context, query string, args ...any) ([]skill.Node, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Node, 0)
	for rows.Next() {
		n, err := scanSkillNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func orderedChildIDs(children []skill.Node) []uuid.UUID {
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].AttachSeq != children[j].AttachSeq {
			return children[i].AttachSeq < children[j].AttachSeq
		}
		return children[i].CreatedSeq < children[j].CreatedSeq
	})
	out := make([]uuid.UUID, 0, len(children))
	for _, c := range children {
		out = append(out, c.ID)
	}
	return out
}

func nullableID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
