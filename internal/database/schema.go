package database

// TableDefinitions contains all the SQL statements to create the database
// tables. Ownership lives on projects only; project_files and run_states
// resolve their owner by joining back through project_id, and the cascade
// on the foreign key is what deletes them when a project goes away.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'idle',
		preview_url TEXT,
		sandbox_id VARCHAR(255),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects (user_id)`,
	`CREATE TABLE IF NOT EXISTS project_files (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		path VARCHAR(1024) NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (project_id, path)
	)`,
	`CREATE TABLE IF NOT EXISTS run_states (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL UNIQUE REFERENCES projects(id) ON DELETE CASCADE,
		current_state VARCHAR(50) NOT NULL DEFAULT 'idle',
		current_phase INTEGER,
		phases JSONB NOT NULL DEFAULT '[]',
		generated_files JSONB NOT NULL DEFAULT '[]',
		conversation_history JSONB NOT NULL DEFAULT '[]',
		sandbox_id VARCHAR(255),
		preview_url TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}
