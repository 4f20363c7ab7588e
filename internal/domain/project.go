package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_project_repository.go -package mocks github.com/forgehq/forge/internal/domain ProjectRepository

// ProjectStatusIdle is the status a project carries until a generation
// run touches it. The column is free-form; other values pass through.
const ProjectStatusIdle = "idle"

// Project is the tenant root. Every child row (files, run state) resolves
// its owner by joining back to UserID; no child carries an owner column.
type Project struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	PreviewURL  NullableString `json:"preview_url"`
	SandboxID   NullableString `json:"sandbox_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate performs validation on the project fields
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("invalid project: id is required")
	}
	if !govalidator.IsUUID(p.ID) {
		return fmt.Errorf("invalid project: id must be a UUID")
	}
	if p.UserID == "" {
		return fmt.Errorf("invalid project: user_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("invalid project: name is required")
	}
	if len(p.Name) > 255 {
		return fmt.Errorf("invalid project: name length must be between 1 and 255")
	}
	return nil
}

// CreateProjectRequest carries the caller-supplied fields for a new project.
// The owner id comes from the authenticated request, never from the body.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validate performs validation on the create request
func (r *CreateProjectRequest) Validate() error {
	if r.Name == "" {
		return NewValidationError("name is required")
	}
	if len(r.Name) > 255 {
		return NewValidationError("name length must be between 1 and 255")
	}
	if len(r.Description) > 2000 {
		return NewValidationError("description length must be at most 2000")
	}
	return nil
}

// ProjectPatch is a partial update. A nil field is absent and leaves the
// column untouched; a non-nil NullableString with IsNull set writes NULL.
type ProjectPatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *string         `json:"status,omitempty"`
	PreviewURL  *NullableString `json:"preview_url,omitempty"`
	SandboxID   *NullableString `json:"sandbox_id,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.PreviewURL == nil && p.SandboxID == nil
}

// Validate performs validation on the patch fields
func (p *ProjectPatch) Validate() error {
	if p.Name != nil {
		if *p.Name == "" {
			return NewValidationError("name cannot be empty")
		}
		if len(*p.Name) > 255 {
			return NewValidationError("name length must be between 1 and 255")
		}
	}
	if p.Description != nil && len(*p.Description) > 2000 {
		return NewValidationError("description length must be at most 2000")
	}
	return nil
}

// ProjectRepository provides owner-scoped access to projects. Read and
// mutate operations that take a userID return (nil, nil) / (false, nil)
// both when the row does not exist and when it belongs to someone else;
// the two cases are indistinguishable on purpose.
type ProjectRepository interface {
	// List returns the user's projects ordered by last update, newest first.
	List(ctx context.Context, userID string) ([]*Project, error)

	// GetByID returns the project, or nil when absent or foreign.
	GetByID(ctx context.Context, id, userID string) (*Project, error)

	// Create persists a new project. A primary-key collision is reported
	// as *ErrDuplicateKey.
	Create(ctx context.Context, project *Project) error

	// Patch applies a partial update and returns the updated row, or nil
	// when absent or foreign. An empty patch returns the current row.
	Patch(ctx context.Context, id, userID string, patch *ProjectPatch) (*Project, error)

	// Delete removes the project and, through the store's cascade, its
	// files and run state. Returns true iff a row was removed.
	Delete(ctx context.Context, id, userID string) (bool, error)
}
