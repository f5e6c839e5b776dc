package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(150) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		department VARCHAR(50),
		subteam VARCHAR(50),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (role IN ('SuperAdmin', 'Admin', 'TeamLeader', 'User'))
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS password_reset_codes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code_hash VARCHAR(255) NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		used_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		start_date DATE NOT NULL,
		deadline DATE NOT NULL,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (start_date <= deadline)
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		team_leader_search UUID REFERENCES users(id) ON DELETE SET NULL,
		team_leader_creative UUID REFERENCES users(id) ON DELETE SET NULL,
		team_leader_development UUID REFERENCES users(id) ON DELETE SET NULL,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS team_account_managers (
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (team_id, user_id)
	)`,

	// A member sits in one sub-team per team.
	`CREATE TABLE IF NOT EXISTS team_subteam_members (
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		subteam VARCHAR(50) NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (team_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL,
		priority VARCHAR(20) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS timesheet_tables (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(40) NOT NULL DEFAULT 'Draft',
		feedback TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		submitted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS timesheet_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		table_id UUID NOT NULL REFERENCES timesheet_tables(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		entry_date DATE NOT NULL,
		project_id UUID NOT NULL REFERENCES projects(id),
		task VARCHAR(255) NOT NULL,
		submitted_to UUID NOT NULL REFERENCES users(id),
		status VARCHAR(20) NOT NULL,
		description TEXT NOT NULL,
		hours NUMERIC(3,1) NOT NULL,
		CHECK (hours >= 0 AND hours <= 12)
	)`,

	`CREATE TABLE IF NOT EXISTS timesheet_review_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		table_id UUID NOT NULL REFERENCES timesheet_tables(id) ON DELETE CASCADE,
		actor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action VARCHAR(20) NOT NULL,
		from_status VARCHAR(40) NOT NULL,
		to_status VARCHAR(40) NOT NULL,
		feedback TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_password_reset_codes_user_id ON password_reset_codes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_project_id ON teams(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_subteam_members_user_id ON team_subteam_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_account_managers_user_id ON team_account_managers(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_tables_created_by ON timesheet_tables(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_tables_status ON timesheet_tables(status)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_entries_table_id ON timesheet_entries(table_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_entries_submitted_to ON timesheet_entries(submitted_to)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_review_events_table_id ON timesheet_review_events(table_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
