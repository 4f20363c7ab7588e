package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/internal/domain/mocks"
	pkgmocks "github.com/forgehq/forge/pkg/mocks"
)

// fakeSender records everything the controller pushes down the wire.
type fakeSender struct {
	sent      []interface{}
	closed    bool
	closeCode int
}

func (s *fakeSender) Send(v interface{}) error {
	s.sent = append(s.sent, v)
	return nil
}

func (s *fakeSender) Close(code int, reason string) {
	s.closed = true
	s.closeCode = code
}

func (s *fakeSender) lastError(t *testing.T) domain.ErrorMessage {
	t.Helper()
	require.NotEmpty(t, s.sent)
	msg, ok := s.sent[len(s.sent)-1].(domain.ErrorMessage)
	require.True(t, ok, "last message is %T, want ErrorMessage", s.sent[len(s.sent)-1])
	return msg
}

func (s *fakeSender) lastSnapshot(t *testing.T) domain.StateUpdateMessage {
	t.Helper()
	require.NotEmpty(t, s.sent)
	msg, ok := s.sent[len(s.sent)-1].(domain.StateUpdateMessage)
	require.True(t, ok, "last message is %T, want StateUpdateMessage", s.sent[len(s.sent)-1])
	return msg
}

type controllerFixture struct {
	projects   *mocks.MockProjectRepository
	runStates  *mocks.MockRunStateRepository
	registry   *Registry
	controller *Controller
}

func newControllerFixture(t *testing.T, ctrl *gomock.Controller) *controllerFixture {
	t.Helper()

	log := pkgmocks.NewMockLogger(ctrl)
	log.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(log).AnyTimes()
	log.EXPECT().WithFields(gomock.Any()).Return(log).AnyTimes()
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	f := &controllerFixture{
		projects:  mocks.NewMockProjectRepository(ctrl),
		runStates: mocks.NewMockRunStateRepository(ctrl),
		registry:  NewRegistry(),
	}
	f.controller = NewController(f.projects, f.runStates, f.registry, log)
	return f
}

func (f *controllerFixture) openSession() *Session {
	session := &Session{ConnectionID: "c1", ProjectID: "p1", UserID: "user1"}
	f.registry.Put(session)
	return session
}

func ownedProject() *domain.Project {
	return &domain.Project{
		ID:     "p1",
		UserID: "user1",
		Name:   "My App",
		Status: domain.ProjectStatusIdle,
		PreviewURL: domain.NullableString{
			String: "https://p1.example.dev",
		},
		SandboxID: domain.NullableString{IsNull: true},
	}
}

func TestHandleOpenAuthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(ownedProject(), nil)

	f.controller.HandleOpen(context.Background(), "c1", "p1", "user1", sender)

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(domain.AgentConnectedMessage)
	require.True(t, ok)
	assert.Equal(t, domain.MessageAgentConnected, msg.Type)
	assert.Equal(t, "p1", msg.ProjectID)
	assert.False(t, sender.closed)
	require.NotNil(t, f.registry.Get("c1"))
}

func TestHandleOpenAccessDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "intruder").
		Return(nil, nil)

	f.controller.HandleOpen(context.Background(), "c1", "p1", "intruder", sender)

	assert.Equal(t, domain.ErrCodeProjectAccessDenied, sender.lastError(t).Code)
	assert.True(t, sender.closed)
	assert.Equal(t, domain.CloseForbidden, sender.closeCode)
	assert.Nil(t, f.registry.Get("c1"))
}

func TestHandleOpenStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(nil, errors.New("connection refused"))

	f.controller.HandleOpen(context.Background(), "c1", "p1", "user1", sender)

	assert.Equal(t, domain.ErrCodeInternalError, sender.lastError(t).Code)
	assert.Equal(t, domain.CloseInternalError, sender.closeCode)
}

func TestHandleMessageWithoutSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	sender := &fakeSender{}

	f.controller.HandleMessage(context.Background(), "ghost", []byte(`{"type": "get_state"}`), sender)

	assert.Equal(t, domain.ErrCodeInternalError, sender.lastError(t).Code)
	assert.True(t, sender.closed)
	assert.Equal(t, domain.CloseInternalError, sender.closeCode)
}

// Malformed frames get an error reply but keep the connection open.
func TestHandleMessageMalformedKeepsConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{ not-json`), sender)

	assert.Equal(t, domain.ErrCodeInvalidMessage, sender.lastError(t).Code)
	assert.False(t, sender.closed)
}

func TestStartGeneration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(nil, nil)

	var captured *domain.RunStatePatch
	f.runStates.EXPECT().
		Upsert(gomock.Any(), "user1", "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.RunStatePatch) (*domain.RunState, error) {
			captured = patch
			return &domain.RunState{
				ID:           "rs1",
				ProjectID:    "p1",
				CurrentState: domain.RunStateGenerating,
				CurrentPhase: domain.NullableInt64{Int64: 0},
				SandboxID:    domain.NullableString{IsNull: true},
				PreviewURL:   domain.NullableString{IsNull: true},
			}, nil
		})

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "start_generation"}`), sender)

	require.NotNil(t, captured)
	require.NotNil(t, captured.CurrentState)
	assert.Equal(t, domain.RunStateGenerating, *captured.CurrentState)
	require.NotNil(t, captured.CurrentPhase)
	assert.False(t, captured.CurrentPhase.IsNull)
	assert.Equal(t, int64(0), captured.CurrentPhase.Int64)
	require.NotNil(t, captured.Phases)
	assert.Empty(t, *captured.Phases)
	require.NotNil(t, captured.GeneratedFiles)
	assert.Empty(t, *captured.GeneratedFiles)
	require.NotNil(t, captured.ConversationHistory)
	assert.Empty(t, *captured.ConversationHistory)

	snapshot := sender.lastSnapshot(t)
	assert.Equal(t, domain.RunStateGenerating, snapshot.CurrentState)
	require.NotNil(t, snapshot.CurrentPhase)
	assert.Equal(t, int64(0), *snapshot.CurrentPhase)
	assert.Equal(t, 0, snapshot.TotalPhases)
	assert.Equal(t, []string{}, snapshot.GeneratedFiles)
	assert.Nil(t, snapshot.PreviewURL)
	assert.False(t, sender.closed)
}

func TestStartGenerationWhileGenerating(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(&domain.RunState{
			ID:           "rs1",
			ProjectID:    "p1",
			CurrentState: domain.RunStateGenerating,
		}, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "start_generation"}`), sender)

	assert.Equal(t, domain.ErrCodeGenerationInProgress, sender.lastError(t).Code)
	assert.True(t, sender.closed)
	assert.Equal(t, domain.CloseConflict, sender.closeCode)
}

// Stopping clears only the active phase and in-flight files; the phase
// plan, conversation, preview URL and sandbox are left untouched.
func TestStopGenerationPreservesArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(&domain.RunState{
			ID:           "rs1",
			ProjectID:    "p1",
			CurrentState: domain.RunStateGenerating,
			CurrentPhase: domain.NullableInt64{Int64: 2},
		}, nil)

	var captured *domain.RunStatePatch
	f.runStates.EXPECT().
		Upsert(gomock.Any(), "user1", "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.RunStatePatch) (*domain.RunState, error) {
			captured = patch
			return &domain.RunState{
				ID:           "rs1",
				ProjectID:    "p1",
				CurrentState: domain.RunStateIdle,
				CurrentPhase: domain.NullableInt64{IsNull: true},
				Phases: domain.PhaseList{
					{Name: "Scaffold"}, {Name: "Pages"}, {Name: "Polish"},
				},
				SandboxID:  domain.NullableString{String: "sbx-1"},
				PreviewURL: domain.NullableString{String: "https://p1.example.dev"},
			}, nil
		})

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "stop_generation"}`), sender)

	require.NotNil(t, captured)
	require.NotNil(t, captured.CurrentState)
	assert.Equal(t, domain.RunStateIdle, *captured.CurrentState)
	require.NotNil(t, captured.CurrentPhase)
	assert.True(t, captured.CurrentPhase.IsNull)
	require.NotNil(t, captured.GeneratedFiles)
	assert.Empty(t, *captured.GeneratedFiles)
	assert.Nil(t, captured.Phases)
	assert.Nil(t, captured.ConversationHistory)
	assert.Nil(t, captured.PreviewURL)
	assert.Nil(t, captured.SandboxID)

	snapshot := sender.lastSnapshot(t)
	assert.Equal(t, domain.RunStateIdle, snapshot.CurrentState)
	assert.Nil(t, snapshot.CurrentPhase)
	assert.Equal(t, 3, snapshot.TotalPhases)
	require.NotNil(t, snapshot.PreviewURL)
	assert.Equal(t, "https://p1.example.dev", *snapshot.PreviewURL)
	assert.False(t, sender.closed)
}

func TestStopGenerationNotInProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(nil, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "stop_generation"}`), sender)

	assert.Equal(t, domain.ErrCodeGenerationNotInProgress, sender.lastError(t).Code)
	assert.Equal(t, domain.CloseConflict, sender.closeCode)
}

func TestUserMessageWithoutRunState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(nil, nil)

	f.controller.HandleMessage(context.Background(), "c1",
		[]byte(`{"type": "user_message", "data": {"content": "hello"}}`), sender)

	assert.Equal(t, domain.ErrCodeInternalError, sender.lastError(t).Code)
	assert.True(t, sender.closed)
	assert.Equal(t, domain.CloseNotFound, sender.closeCode)
}

func TestUserMessageAppendsToHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(&domain.RunState{
			ID:           "rs1",
			ProjectID:    "p1",
			CurrentState: domain.RunStateIdle,
			ConversationHistory: domain.ConversationHistory{
				{Role: "user", Content: "first", Timestamp: time.Now().UTC()},
			},
		}, nil)

	var captured *domain.RunStatePatch
	f.runStates.EXPECT().
		Upsert(gomock.Any(), "user1", "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.RunStatePatch) (*domain.RunState, error) {
			captured = patch
			return &domain.RunState{
				ID:                  "rs1",
				ProjectID:           "p1",
				CurrentState:        domain.RunStateIdle,
				CurrentPhase:        domain.NullableInt64{IsNull: true},
				ConversationHistory: *patch.ConversationHistory,
				SandboxID:           domain.NullableString{IsNull: true},
				PreviewURL:          domain.NullableString{IsNull: true},
			}, nil
		})

	f.controller.HandleMessage(context.Background(), "c1",
		[]byte(`{"type": "user_message", "data": {"content": "  make it blue  "}}`), sender)

	require.NotNil(t, captured)
	require.NotNil(t, captured.ConversationHistory)
	history := *captured.ConversationHistory
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "make it blue", history[1].Content)
	assert.False(t, history[1].Timestamp.IsZero())
	assert.Nil(t, captured.CurrentState)

	sender.lastSnapshot(t)
	assert.False(t, sender.closed)
}

func TestGetStateWithRunState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(ownedProject(), nil)
	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(&domain.RunState{
			ID:             "rs1",
			ProjectID:      "p1",
			CurrentState:   domain.RunStateGenerating,
			CurrentPhase:   domain.NullableInt64{Int64: 1},
			Phases:         domain.PhaseList{{Name: "Scaffold"}, {Name: "Pages"}},
			GeneratedFiles: domain.StringList{"src/index.ts"},
			SandboxID:      domain.NullableString{IsNull: true},
			PreviewURL:     domain.NullableString{String: "https://p1.example.dev"},
		}, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "get_state"}`), sender)

	snapshot := sender.lastSnapshot(t)
	assert.Equal(t, domain.RunStateGenerating, snapshot.CurrentState)
	require.NotNil(t, snapshot.CurrentPhase)
	assert.Equal(t, int64(1), *snapshot.CurrentPhase)
	assert.Equal(t, 2, snapshot.TotalPhases)
	assert.Equal(t, []string{"src/index.ts"}, snapshot.GeneratedFiles)
}

// A project without a run state row still answers get_state, from the
// project record itself.
func TestGetStateFallsBackToProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(ownedProject(), nil)
	f.runStates.EXPECT().
		GetByProject(gomock.Any(), "p1", "user1").
		Return(nil, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "get_state"}`), sender)

	snapshot := sender.lastSnapshot(t)
	assert.Equal(t, domain.ProjectStatusIdle, snapshot.CurrentState)
	assert.Nil(t, snapshot.CurrentPhase)
	assert.Equal(t, 0, snapshot.TotalPhases)
	assert.Equal(t, []string{}, snapshot.GeneratedFiles)
	require.NotNil(t, snapshot.PreviewURL)
	assert.Equal(t, "https://p1.example.dev", *snapshot.PreviewURL)
}

// Ownership is re-checked on read commands: a project deleted mid-session
// turns into access denied, not a stale snapshot.
func TestGetStateAfterProjectDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(nil, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "get_state"}`), sender)

	assert.Equal(t, domain.ErrCodeProjectAccessDenied, sender.lastError(t).Code)
	assert.Equal(t, domain.CloseForbidden, sender.closeCode)
}

func TestGetPreviewURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(ownedProject(), nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "get_preview_url"}`), sender)

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(domain.PreviewURLMessage)
	require.True(t, ok)
	assert.Equal(t, domain.MessagePreviewURL, msg.Type)
	require.NotNil(t, msg.PreviewURL)
	assert.Equal(t, "https://p1.example.dev", *msg.PreviewURL)
}

func TestGetPreviewURLWhenUnset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()
	sender := &fakeSender{}

	project := ownedProject()
	project.PreviewURL = domain.NullableString{IsNull: true}
	f.projects.EXPECT().
		GetByID(gomock.Any(), "p1", "user1").
		Return(project, nil)

	f.controller.HandleMessage(context.Background(), "c1", []byte(`{"type": "get_preview_url"}`), sender)

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(domain.PreviewURLMessage)
	require.True(t, ok)
	assert.Nil(t, msg.PreviewURL)
}

func TestHandleCloseEvictsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newControllerFixture(t, ctrl)
	f.openSession()

	f.controller.HandleClose("c1")

	assert.Nil(t, f.registry.Get("c1"))
	assert.Equal(t, 0, f.registry.Count())
}
