package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgehq/forge/internal/domain"
)

// projectFileRepository implements domain.ProjectFileRepository for
// PostgreSQL. Files carry no owner column; every query joins back to the
// parent project's user_id.
type projectFileRepository struct {
	db *sql.DB
}

// NewProjectFileRepository creates a new PostgreSQL project file repository
func NewProjectFileRepository(db *sql.DB) domain.ProjectFileRepository {
	return &projectFileRepository{
		db: db,
	}
}

func scanProjectFile(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.ProjectFile, error) {
	var f domain.ProjectFile
	if err := scanner.Scan(
		&f.ID,
		&f.ProjectID,
		&f.Path,
		&f.Content,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListByProject retrieves a project's files ordered by path
func (r *projectFileRepository) ListByProject(ctx context.Context, projectID, userID string) ([]*domain.ProjectFile, error) {
	query := `
		SELECT f.id, f.project_id, f.path, f.content, f.created_at, f.updated_at
		FROM project_files f
		INNER JOIN projects p ON p.id = f.project_id
		WHERE f.project_id = $1 AND p.user_id = $2
		ORDER BY f.path ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	defer rows.Close()

	var files []*domain.ProjectFile
	for rows.Next() {
		file, err := scanProjectFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project files: %w", err)
	}

	return files, nil
}

// Get retrieves the file at (projectID, path) under the owner's scope
func (r *projectFileRepository) Get(ctx context.Context, userID, projectID, path string) (*domain.ProjectFile, error) {
	query := `
		SELECT f.id, f.project_id, f.path, f.content, f.created_at, f.updated_at
		FROM project_files f
		INNER JOIN projects p ON p.id = f.project_id
		WHERE f.project_id = $1 AND f.path = $2 AND p.user_id = $3
	`

	file, err := scanProjectFile(r.db.QueryRowContext(ctx, query, projectID, path, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project file: %w", err)
	}

	return file, nil
}

const upsertFileQuery = `
	INSERT INTO project_files (id, project_id, path, content, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (project_id, path) DO UPDATE
	SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
	RETURNING id, project_id, path, content, created_at, updated_at
`

// Upsert inserts or updates the file keyed on (project_id, path). The
// ownership check happens before the write, never after.
func (r *projectFileRepository) Upsert(ctx context.Context, userID string, input domain.FileUpsert) (*domain.ProjectFile, error) {
	owned, err := r.projectOwned(ctx, r.db, input.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, nil
	}

	file, err := scanProjectFile(r.db.QueryRowContext(ctx, upsertFileQuery,
		uuid.New().String(),
		input.ProjectID,
		input.Path,
		input.Content,
		time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert project file: %w", err)
	}

	return file, nil
}

// BulkUpsert applies every input inside one transaction. Inputs whose
// project is absent or foreign are skipped without failing the batch and
// are not counted.
func (r *projectFileRepository) BulkUpsert(ctx context.Context, userID string, inputs []domain.FileUpsert) (int, error) {
	count := 0

	err := withTransaction(ctx, r.db, func(tx *sql.Tx) error {
		// One ownership probe per distinct project in the batch.
		owned := make(map[string]bool)

		for _, input := range inputs {
			ok, known := owned[input.ProjectID]
			if !known {
				var err error
				ok, err = r.projectOwned(ctx, tx, input.ProjectID, userID)
				if err != nil {
					return err
				}
				owned[input.ProjectID] = ok
			}
			if !ok {
				continue
			}

			_, err := tx.ExecContext(ctx, upsertFileQuery,
				uuid.New().String(),
				input.ProjectID,
				input.Path,
				input.Content,
				time.Now().UTC(),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert project file: %w", err)
			}
			count++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Delete removes the file at (projectID, path) under the owner's scope
func (r *projectFileRepository) Delete(ctx context.Context, userID, projectID, path string) (bool, error) {
	query := `
		DELETE FROM project_files
		WHERE project_id = $1 AND path = $2
		  AND project_id IN (SELECT id FROM projects WHERE id = $1 AND user_id = $3)
	`

	result, err := r.db.ExecContext(ctx, query, projectID, path, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete project file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *projectFileRepository) projectOwned(ctx context.Context, q queryRower, projectID, userID string) (bool, error) {
	var owned bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to check project ownership: %w", err)
	}
	return owned, nil
}
