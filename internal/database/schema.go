package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The unique index on users.email enforces uniqueness at the storage layer;
// the service-level read-then-check only exists to produce a friendly error.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    pending_tasks TEXT[] NOT NULL DEFAULT '{}'
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    deadline TIMESTAMPTZ NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    assigned_user UUID,
    assigned_user_name TEXT NOT NULL DEFAULT 'unassigned',
    date_created TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS tasks_assigned_user_idx ON tasks (assigned_user);
CREATE INDEX IF NOT EXISTS tasks_completed_idx ON tasks (completed);
CREATE INDEX IF NOT EXISTS tasks_date_created_idx ON tasks (date_created);
`

// CreateSchema creates the tables and indexes if they do not exist yet.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
