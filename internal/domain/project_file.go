package domain

import (
	"context"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_project_file_repository.go -package mocks github.com/forgehq/forge/internal/domain ProjectFileRepository

// ProjectFile is one generated source file. (project_id, path) is unique:
// writing the same path twice updates the row instead of duplicating it.
type ProjectFile struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileUpsert is the input for writing a file, keyed on (project_id, path).
type FileUpsert struct {
	ProjectID string `json:"project_id"`
	Path      string `json:"path"`
	Content   string `json:"content"`
}

// Validate performs validation on the upsert input
func (f *FileUpsert) Validate() error {
	if f.ProjectID == "" {
		return NewValidationError("project_id is required")
	}
	if strings.TrimSpace(f.Path) == "" {
		return NewValidationError("path is required")
	}
	if len(f.Path) > 1024 {
		return NewValidationError("path length must be at most 1024")
	}
	return nil
}

// ProjectFileRepository provides owner-scoped access to project files.
// Ownership is always resolved through the parent project's user id.
type ProjectFileRepository interface {
	// ListByProject returns the project's files ordered by path, or an
	// empty slice when the project is absent or foreign.
	ListByProject(ctx context.Context, projectID, userID string) ([]*ProjectFile, error)

	// Get returns the file at (projectID, path), or nil when absent or
	// the project is foreign.
	Get(ctx context.Context, userID, projectID, path string) (*ProjectFile, error)

	// Upsert inserts or updates the file at (projectID, path). Returns nil
	// when the parent project is absent or foreign; the ownership check
	// runs before the write.
	Upsert(ctx context.Context, userID string, input FileUpsert) (*ProjectFile, error)

	// BulkUpsert applies each input independently inside one transaction
	// and returns the number of rows written. Inputs whose project is
	// absent or foreign are skipped, not counted, and do not abort the
	// rest of the batch.
	BulkUpsert(ctx context.Context, userID string, inputs []FileUpsert) (int, error)

	// Delete removes the file at (projectID, path). Returns true iff a
	// row was removed under the owner's scope.
	Delete(ctx context.Context, userID, projectID, path string) (bool, error)
}
