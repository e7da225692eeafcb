package repository

import (
	"database/sql"
)

// Uniqueness of email and username lives in the schema, not in application
// checks: two racing registrations hit the unique index and exactly one
// wins. The ownership relation is enforced twice, as a foreign key here and
// as an owner_id predicate on every task query.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    username VARCHAR(255) NOT NULL UNIQUE,
    hashed_password VARCHAR(255) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    owner_id INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    priority VARCHAR(16) NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    category VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks (owner_id);
`

// CreateTablesIfNotExist applies the schema. Called once at startup and at
// the top of DB-backed test runs.
func CreateTablesIfNotExist(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// DropAllTables removes everything the schema creates. Test cleanup only.
func DropAllTables(db *sql.DB) error {
	_, err := db.Exec(`DROP TABLE IF EXISTS tasks; DROP TABLE IF EXISTS users;`)
	return err
}
