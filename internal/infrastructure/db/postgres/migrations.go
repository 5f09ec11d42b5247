package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start. Each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		acct_status   TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS general_users (
		user_id         BIGINT PRIMARY KEY REFERENCES users(user_id),
		total_donations NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS project_managers (
		user_id          BIGINT PRIMARY KEY REFERENCES users(user_id),
		projects_managed INT NOT NULL DEFAULT 0,
		rating           DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		project_id BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		goal_amt   NUMERIC(12,2) NOT NULL CHECK (goal_amt > 0),
		raised_amt NUMERIC(12,2) NOT NULL DEFAULT 0,
		faq        TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'paused')),
		manager_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		tag_id    BIGSERIAL PRIMARY KEY,
		tag_value TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS project_tags (
		project_id BIGINT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
		tag_id     BIGINT NOT NULL REFERENCES tags(tag_id) ON DELETE CASCADE,
		PRIMARY KEY (project_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS donations (
		donation_id  BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(user_id),
		project_id   BIGINT NOT NULL REFERENCES projects(project_id),
		donation_amt NUMERIC(12,2) NOT NULL,
		payment_mthd TEXT NOT NULL,
		UNIQUE (user_id, project_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		comment_id  BIGSERIAL PRIMARY KEY,
		project_id  BIGINT NOT NULL REFERENCES projects(project_id),
		user_id     BIGINT NOT NULL REFERENCES users(user_id),
		content     TEXT NOT NULL,
		date_posted DATE NOT NULL DEFAULT CURRENT_DATE
	)`,
	`CREATE TABLE IF NOT EXISTS rewards (
		reward_id    BIGSERIAL PRIMARY KEY,
		project_id   BIGINT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
		description  TEXT NOT NULL,
		min_donation NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		rating_id  BIGSERIAL PRIMARY KEY,
		manager_id BIGINT NOT NULL,
		rating     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_project_date ON comments (project_id, date_posted DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_manager ON projects (manager_id)`,
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db execer) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
