package sqlite

// Schema mirrors the Postgres migrations for the embedded store. Timestamps
// are TEXT in a fixed-width UTC layout and ids are canonical UUID strings.
const Schema = `
CREATE TABLE IF NOT EXISTS skill_catalog (
    id        INTEGER PRIMARY KEY CHECK (id = 1),
    revision  INTEGER NOT NULL DEFAULT 0,
    next_seq  INTEGER NOT NULL DEFAULT 0
);

INSERT INTO skill_catalog (id) VALUES (1) ON CONFLICT DO NOTHING;

CREATE TABLE IF NOT EXISTS skill_nodes (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    parent_id   TEXT NULL REFERENCES skill_nodes(id) ON DELETE RESTRICT,
    created_seq INTEGER NOT NULL UNIQUE,
    attach_seq  INTEGER NOT NULL,
    version     INTEGER NOT NULL DEFAULT 1,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    CHECK (parent_id IS NULL OR parent_id <> id)
);

CREATE INDEX IF NOT EXISTS idx_skill_nodes_parent ON skill_nodes(parent_id, attach_seq);

CREATE TABLE IF NOT EXISTS users (
    id             TEXT PRIMARY KEY,
    email          TEXT NOT NULL UNIQUE,
    role           TEXT NOT NULL DEFAULT 'member',
    skills_version INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_skill_entries (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    skill_id   TEXT NOT NULL REFERENCES skill_nodes(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL,
    UNIQUE (user_id, skill_id)
);

CREATE INDEX IF NOT EXISTS idx_user_skill_entries_skill ON user_skill_entries(skill_id);

CREATE TABLE IF NOT EXISTS user_skill_level_history (
    entry_id   TEXT NOT NULL REFERENCES user_skill_entries(id) ON DELETE CASCADE,
    seq        INTEGER NOT NULL,
    level      TEXT NOT NULL CHECK (level IN ('beginner', 'intermediate', 'advanced', 'expert')),
    changed_at TEXT NOT NULL,
    changed_by TEXT NOT NULL,
    PRIMARY KEY (entry_id, seq)
);

CREATE TRIGGER IF NOT EXISTS user_skill_level_history_append_only
BEFORE UPDATE ON user_skill_level_history
BEGIN
    SELECT RAISE(ABORT, 'user_skill_level_history is append-only');
END;
`
