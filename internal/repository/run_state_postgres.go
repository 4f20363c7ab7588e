package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/pkg/tracing"
)

// runStateRepository implements domain.RunStateRepository for PostgreSQL.
// The unique constraint on project_id makes Upsert resolve to "insert if
// absent, else merge-update the single row".
type runStateRepository struct {
	db *sql.DB
}

// NewRunStateRepository creates a new PostgreSQL run state repository
func NewRunStateRepository(db *sql.DB) domain.RunStateRepository {
	return &runStateRepository{
		db: db,
	}
}

const runStateColumns = `id, project_id, current_state, current_phase, phases, generated_files, conversation_history, sandbox_id, preview_url, created_at, updated_at`

func scanRunState(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.RunState, error) {
	var rs domain.RunState
	if err := scanner.Scan(
		&rs.ID,
		&rs.ProjectID,
		&rs.CurrentState,
		&rs.CurrentPhase,
		&rs.Phases,
		&rs.GeneratedFiles,
		&rs.ConversationHistory,
		&rs.SandboxID,
		&rs.PreviewURL,
		&rs.CreatedAt,
		&rs.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rs, nil
}

// GetByProject retrieves a project's run state under the owner's scope
func (r *runStateRepository) GetByProject(ctx context.Context, projectID, userID string) (*domain.RunState, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "RunStateRepository", "GetByProject")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "projectID", projectID)

	query := fmt.Sprintf(`
		SELECT %s
		FROM run_states rs
		INNER JOIN projects p ON p.id = rs.project_id
		WHERE rs.project_id = $1 AND p.user_id = $2
	`, prefixColumns("rs", runStateColumns))

	state, err := scanRunState(r.db.QueryRowContext(ctx, query, projectID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}

	return state, nil
}

// Upsert inserts the singleton row if absent and merge-updates it
// otherwise. Omitted patch fields are left untouched so a caller can flip
// current_state without clobbering phases or the conversation.
func (r *runStateRepository) Upsert(ctx context.Context, userID, projectID string, patch *domain.RunStatePatch) (*domain.RunState, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "RunStateRepository", "Upsert")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "projectID", projectID)

	var state *domain.RunState

	err := withTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var owned bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND user_id = $2)`,
			projectID, userID,
		).Scan(&owned)
		if err != nil {
			return fmt.Errorf("failed to check project ownership: %w", err)
		}
		if !owned {
			return nil
		}

		// Create the singleton with column defaults when absent. A
		// concurrent insert loses the race here and falls through to the
		// merge-update below.
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_states (id, project_id, created_at, updated_at)
			VALUES ($1, $2, $3, $3)
			ON CONFLICT (project_id) DO NOTHING
		`, uuid.New().String(), projectID, now)
		if err != nil {
			return fmt.Errorf("failed to insert run state: %w", err)
		}

		psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

		update := psql.Update("run_states").
			Set("updated_at", now).
			Where(sq.Eq{"project_id": projectID}).
			Suffix("RETURNING " + runStateColumns)

		if patch.CurrentState != nil {
			update = update.Set("current_state", *patch.CurrentState)
		}
		if patch.CurrentPhase != nil {
			update = update.Set("current_phase", *patch.CurrentPhase)
		}
		if patch.Phases != nil {
			update = update.Set("phases", *patch.Phases)
		}
		if patch.GeneratedFiles != nil {
			update = update.Set("generated_files", *patch.GeneratedFiles)
		}
		if patch.ConversationHistory != nil {
			update = update.Set("conversation_history", *patch.ConversationHistory)
		}
		if patch.SandboxID != nil {
			update = update.Set("sandbox_id", *patch.SandboxID)
		}
		if patch.PreviewURL != nil {
			update = update.Set("preview_url", *patch.PreviewURL)
		}

		query, args, err := update.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build upsert query: %w", err)
		}

		state, err = scanRunState(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			return fmt.Errorf("failed to upsert run state: %w", err)
		}

		return nil
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	return state, nil
}

// Delete removes the project's run state row under the owner's scope
func (r *runStateRepository) Delete(ctx context.Context, projectID, userID string) (bool, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "RunStateRepository", "Delete")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "projectID", projectID)

	query := `
		DELETE FROM run_states
		WHERE project_id = $1
		  AND project_id IN (SELECT id FROM projects WHERE id = $1 AND user_id = $2)
	`

	result, err := r.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return false, fmt.Errorf("failed to delete run state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
