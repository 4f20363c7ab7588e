package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/forgehq/forge/internal/domain"
)

// projectRepository implements domain.ProjectRepository for PostgreSQL.
// Every query is parameterized by user_id so a missing row and a foreign
// row are indistinguishable to the caller.
type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &projectRepository{
		db: db,
	}
}

const projectColumns = `id, user_id, name, description, status, preview_url, sandbox_id, created_at, updated_at`

func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Project, error) {
	var p domain.Project
	if err := scanner.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.PreviewURL,
		&p.SandboxID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves all projects owned by the user, most recently updated first
func (r *projectRepository) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, projectColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// GetByID retrieves a project under the owner's scope, nil when absent
func (r *projectRepository) GetByID(ctx context.Context, id, userID string) (*domain.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectColumns)

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// Create persists a new project
func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = domain.ProjectStatusIdle
	}

	query := `
		INSERT INTO projects (
			id, user_id, name, description, status, preview_url, sandbox_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.Status,
		project.PreviewURL,
		project.SandboxID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return &domain.ErrDuplicateKey{Entity: "project", Constraint: constraint}
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Patch applies a partial update. Only fields present in the patch are
// written; an empty patch is a no-op that still returns the current row.
func (r *projectRepository) Patch(ctx context.Context, id, userID string, patch *domain.ProjectPatch) (*domain.Project, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id, userID)
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	update := psql.Update("projects").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + projectColumns)

	if patch.Name != nil {
		update = update.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		update = update.Set("description", *patch.Description)
	}
	if patch.Status != nil {
		update = update.Set("status", *patch.Status)
	}
	if patch.PreviewURL != nil {
		update = update.Set("preview_url", *patch.PreviewURL)
	}
	if patch.SandboxID != nil {
		update = update.Set("sandbox_id", *patch.SandboxID)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build patch query: %w", err)
	}

	project, err := scanProject(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to patch project: %w", err)
	}

	return project, nil
}

// Delete removes a project; files and run state go with it via the
// store's cascade, not application code.
func (r *projectRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	query := `
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
