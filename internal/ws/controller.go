package ws

import (
	"context"
	"time"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/pkg/logger"
)

// Sender is the outbound half of a connection. Send marshals one message
// to the client; Close terminates the connection with a close code. The
// transport guarantees both are safe to call from the handler goroutine.
type Sender interface {
	Send(v interface{}) error
	Close(code int, reason string)
}

// Controller owns the per-connection event lifecycle: it authorizes opens,
// validates and dispatches commands, drives the persisted run state and
// replies with state snapshots. One controller serves all connections;
// per-connection state lives in the registry.
type Controller struct {
	projects  domain.ProjectRepository
	runStates domain.RunStateRepository
	registry  *Registry
	logger    logger.Logger
}

// NewController creates a session controller
func NewController(projects domain.ProjectRepository, runStates domain.RunStateRepository, registry *Registry, logger logger.Logger) *Controller {
	return &Controller{
		projects:  projects,
		runStates: runStates,
		registry:  registry,
		logger:    logger,
	}
}

// HandleOpen authorizes the connection against the project's owner and
// caches the session. Ownership is checked here once; later commands
// trust the cached session except where the protocol re-checks.
func (c *Controller) HandleOpen(ctx context.Context, connectionID, projectID, userID string, sender Sender) {
	project, err := c.projects.GetByID(ctx, projectID, userID)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"connection_id": connectionID,
			"project_id":    projectID,
			"error":         err.Error(),
		}).Error("Failed to resolve project on open")
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeInternalError, "failed to open session"))
		sender.Close(domain.CloseInternalError, "internal error")
		return
	}

	if project == nil {
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeProjectAccessDenied, "project not found or access denied"))
		sender.Close(domain.CloseForbidden, "access denied")
		return
	}

	c.registry.Put(&Session{
		ConnectionID: connectionID,
		ProjectID:    projectID,
		UserID:       userID,
	})

	c.send(sender, domain.AgentConnectedMessage{
		Type:      domain.MessageAgentConnected,
		ProjectID: projectID,
	})
}

// HandleMessage validates the envelope and dispatches the command. All
// failures are reported to the client; only authorization and domain
// conflicts also terminate the connection.
func (c *Controller) HandleMessage(ctx context.Context, connectionID string, payload []byte, sender Sender) {
	session := c.registry.Get(connectionID)
	if session == nil {
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeInternalError, "no active session"))
		sender.Close(domain.CloseInternalError, "no active session")
		return
	}

	cmd, protoErr := ValidateMessage(payload)
	if protoErr != nil {
		c.send(sender, domain.NewErrorMessage(protoErr.Code, protoErr.Message))
		return
	}

	switch cmd.Type {
	case domain.CommandStartGeneration:
		c.handleStartGeneration(ctx, session, sender)
	case domain.CommandStopGeneration:
		c.handleStopGeneration(ctx, session, sender)
	case domain.CommandUserMessage:
		c.handleUserMessage(ctx, session, cmd.Content, sender)
	case domain.CommandGetState:
		c.handleGetState(ctx, session, sender)
	case domain.CommandGetPreviewURL:
		c.handleGetPreviewURL(ctx, session, sender)
	}
}

// HandleClose evicts the cached session. Persisted run state survives;
// only the in-memory registry entry goes away.
func (c *Controller) HandleClose(connectionID string) {
	c.registry.Remove(connectionID)
}

func (c *Controller) handleStartGeneration(ctx context.Context, session *Session, sender Sender) {
	state, err := c.runStates.GetByProject(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read run state", sender)
		return
	}

	if state != nil && state.CurrentState == domain.RunStateGenerating {
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeGenerationInProgress, "generation already in progress"))
		sender.Close(domain.CloseConflict, "generation in progress")
		return
	}

	// A fresh run starts from a clean slate: phase zero, no plan, no
	// generated files, no conversation.
	generating := domain.RunStateGenerating
	phase := domain.NullableInt64{Int64: 0}
	updated, err := c.runStates.Upsert(ctx, session.UserID, session.ProjectID, &domain.RunStatePatch{
		CurrentState:        &generating,
		CurrentPhase:        &phase,
		Phases:              &domain.PhaseList{},
		GeneratedFiles:      &domain.StringList{},
		ConversationHistory: &domain.ConversationHistory{},
	})
	if err != nil {
		c.internalError(session, err, "Failed to start generation", sender)
		return
	}
	if updated == nil {
		c.accessDenied(sender)
		return
	}

	c.send(sender, snapshotFromRunState(updated))
}

func (c *Controller) handleStopGeneration(ctx context.Context, session *Session, sender Sender) {
	state, err := c.runStates.GetByProject(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read run state", sender)
		return
	}

	if state == nil || state.CurrentState != domain.RunStateGenerating {
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeGenerationNotInProgress, "no generation in progress"))
		sender.Close(domain.CloseConflict, "no generation in progress")
		return
	}

	// Stopping is not resetting: preview URL, sandbox, the phase plan and
	// the conversation all survive. Only the active phase and the
	// in-flight file list are dropped.
	idle := domain.RunStateIdle
	phase := domain.NullableInt64{IsNull: true}
	updated, err := c.runStates.Upsert(ctx, session.UserID, session.ProjectID, &domain.RunStatePatch{
		CurrentState:   &idle,
		CurrentPhase:   &phase,
		GeneratedFiles: &domain.StringList{},
	})
	if err != nil {
		c.internalError(session, err, "Failed to stop generation", sender)
		return
	}
	if updated == nil {
		c.accessDenied(sender)
		return
	}

	c.send(sender, snapshotFromRunState(updated))
}

func (c *Controller) handleUserMessage(ctx context.Context, session *Session, content string, sender Sender) {
	state, err := c.runStates.GetByProject(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read run state", sender)
		return
	}

	if state == nil {
		c.send(sender, domain.NewErrorMessage(domain.ErrCodeInternalError, "no run state for project"))
		sender.Close(domain.CloseNotFound, "run state not found")
		return
	}

	history := append(state.ConversationHistory, domain.ConversationMessage{
		Role:      "user",
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	updated, err := c.runStates.Upsert(ctx, session.UserID, session.ProjectID, &domain.RunStatePatch{
		ConversationHistory: &history,
	})
	if err != nil {
		c.internalError(session, err, "Failed to append user message", sender)
		return
	}
	if updated == nil {
		c.accessDenied(sender)
		return
	}

	c.send(sender, snapshotFromRunState(updated))
}

func (c *Controller) handleGetState(ctx context.Context, session *Session, sender Sender) {
	project, err := c.projects.GetByID(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read project", sender)
		return
	}
	if project == nil {
		c.accessDenied(sender)
		return
	}

	state, err := c.runStates.GetByProject(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read run state", sender)
		return
	}

	if state != nil {
		c.send(sender, snapshotFromRunState(state))
		return
	}

	c.send(sender, snapshotFromProject(project))
}

func (c *Controller) handleGetPreviewURL(ctx context.Context, session *Session, sender Sender) {
	project, err := c.projects.GetByID(ctx, session.ProjectID, session.UserID)
	if err != nil {
		c.internalError(session, err, "Failed to read project", sender)
		return
	}
	if project == nil {
		c.accessDenied(sender)
		return
	}

	c.send(sender, domain.PreviewURLMessage{
		Type:       domain.MessagePreviewURL,
		PreviewURL: nullableStringPtr(project.PreviewURL),
	})
}

func (c *Controller) accessDenied(sender Sender) {
	c.send(sender, domain.NewErrorMessage(domain.ErrCodeProjectAccessDenied, "project not found or access denied"))
	sender.Close(domain.CloseForbidden, "access denied")
}

// internalError reports an unexpected store failure generically, without
// leaking store internals and without tearing down the connection.
func (c *Controller) internalError(session *Session, err error, msg string, sender Sender) {
	c.logger.WithFields(map[string]interface{}{
		"connection_id": session.ConnectionID,
		"project_id":    session.ProjectID,
		"error":         err.Error(),
	}).Error(msg)
	c.send(sender, domain.NewErrorMessage(domain.ErrCodeInternalError, "internal error"))
}

func (c *Controller) send(sender Sender, v interface{}) {
	if err := sender.Send(v); err != nil {
		c.logger.WithField("error", err.Error()).Warn("Failed to send message")
	}
}

func snapshotFromRunState(state *domain.RunState) domain.StateUpdateMessage {
	files := []string(state.GeneratedFiles)
	if files == nil {
		files = []string{}
	}
	return domain.StateUpdateMessage{
		Type:           domain.MessageStateUpdate,
		CurrentState:   state.CurrentState,
		CurrentPhase:   nullableInt64Ptr(state.CurrentPhase),
		TotalPhases:    len(state.Phases),
		GeneratedFiles: files,
		PreviewURL:     nullableStringPtr(state.PreviewURL),
	}
}

// snapshotFromProject is the fallback for projects that have no run state
// row yet: project-level status and preview stand in for the run fields.
func snapshotFromProject(project *domain.Project) domain.StateUpdateMessage {
	return domain.StateUpdateMessage{
		Type:           domain.MessageStateUpdate,
		CurrentState:   project.Status,
		CurrentPhase:   nil,
		TotalPhases:    0,
		GeneratedFiles: []string{},
		PreviewURL:     nullableStringPtr(project.PreviewURL),
	}
}

func nullableStringPtr(ns domain.NullableString) *string {
	if ns.IsNull {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt64Ptr(ni domain.NullableInt64) *int64 {
	if ni.IsNull {
		return nil
	}
	n := ni.Int64
	return &n
}
