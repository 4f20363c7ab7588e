package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_run_state_repository.go -package mocks github.com/forgehq/forge/internal/domain RunStateRepository

// Run states persisted in run_states.current_state. Only these two are
// guarded by the session controller; other strings pass through so that
// later pipeline stages can introduce their own without a schema change.
const (
	RunStateIdle       = "idle"
	RunStateGenerating = "generating"
)

// PhaseFile describes one file planned inside a phase.
type PhaseFile struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose"`
}

// Phase is one step of a generation plan.
type Phase struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Files       []PhaseFile `json:"files"`
	IsLastPhase bool        `json:"is_last_phase"`
}

// PhaseList is the jsonb-backed ordered list of phases.
type PhaseList []Phase

// Value implements the driver.Valuer interface for database/sql
func (p PhaseList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for database/sql
func (p *PhaseList) Scan(value interface{}) error {
	return scanJSON(value, p, "PhaseList")
}

// StringList is a jsonb-backed ordered list of strings (generated file paths).
type StringList []string

// Value implements the driver.Valuer interface for database/sql
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database/sql
func (s *StringList) Scan(value interface{}) error {
	return scanJSON(value, s, "StringList")
}

// ConversationMessage is one exchange in a project's conversation.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationHistory is the jsonb-backed ordered conversation log.
type ConversationHistory []ConversationMessage

// Value implements the driver.Valuer interface for database/sql
func (c ConversationHistory) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database/sql
func (c *ConversationHistory) Scan(value interface{}) error {
	return scanJSON(value, c, "ConversationHistory")
}

func scanJSON(value interface{}, dest interface{}, typeName string) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}

// RunState is the single persisted row tracking a project's generation
// progress and conversation. Exactly one row exists per project, enforced
// by a unique constraint on project_id.
type RunState struct {
	ID                  string              `json:"id"`
	ProjectID           string              `json:"project_id"`
	CurrentState        string              `json:"current_state"`
	CurrentPhase        NullableInt64       `json:"current_phase"`
	Phases              PhaseList           `json:"phases"`
	GeneratedFiles      StringList          `json:"generated_files"`
	ConversationHistory ConversationHistory `json:"conversation_history"`
	SandboxID           NullableString      `json:"sandbox_id"`
	PreviewURL          NullableString      `json:"preview_url"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// RunStatePatch is the merge-patch applied by Upsert. A nil field leaves
// the column untouched; this is the contract that lets a caller flip
// current_state without clobbering phases or the conversation. Nullable
// wrappers distinguish "write NULL" from "leave alone".
type RunStatePatch struct {
	CurrentState        *string              `json:"current_state,omitempty"`
	CurrentPhase        *NullableInt64       `json:"current_phase,omitempty"`
	Phases              *PhaseList           `json:"phases,omitempty"`
	GeneratedFiles      *StringList          `json:"generated_files,omitempty"`
	ConversationHistory *ConversationHistory `json:"conversation_history,omitempty"`
	SandboxID           *NullableString      `json:"sandbox_id,omitempty"`
	PreviewURL          *NullableString      `json:"preview_url,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *RunStatePatch) IsEmpty() bool {
	return p.CurrentState == nil && p.CurrentPhase == nil && p.Phases == nil &&
		p.GeneratedFiles == nil && p.ConversationHistory == nil &&
		p.SandboxID == nil && p.PreviewURL == nil
}

// RunStateRepository provides owner-scoped access to run state rows.
type RunStateRepository interface {
	// GetByProject returns the project's run state, or nil when no row
	// exists yet or the project is foreign.
	GetByProject(ctx context.Context, projectID, userID string) (*RunState, error)

	// Upsert inserts the row if absent (with column defaults for omitted
	// fields) and otherwise merge-updates it, refreshing updated_at.
	// Returns nil when the project is absent or foreign; the ownership
	// check runs before any write.
	Upsert(ctx context.Context, userID, projectID string, patch *RunStatePatch) (*RunState, error)

	// Delete removes the project's run state row. Returns true iff a row
	// was removed under the owner's scope. This is the explicit reset;
	// nothing else deletes run state.
	Delete(ctx context.Context, projectID, userID string) (bool, error)
}
