package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/forgehq/forge/internal/domain"
)

// MockRunStateRepository is a mock of RunStateRepository interface
type MockRunStateRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRunStateRepositoryMockRecorder
}

// MockRunStateRepositoryMockRecorder is the mock recorder for MockRunStateRepository
type MockRunStateRepositoryMockRecorder struct {
	mock *MockRunStateRepository
}

// NewMockRunStateRepository creates a new mock instance
func NewMockRunStateRepository(ctrl *gomock.Controller) *MockRunStateRepository {
	mock := &MockRunStateRepository{ctrl: ctrl}
	mock.recorder = &MockRunStateRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockRunStateRepository) EXPECT() *MockRunStateRepositoryMockRecorder {
	return m.recorder
}

// GetByProject mocks base method
func (m *MockRunStateRepository) GetByProject(ctx context.Context, projectID, userID string) (*domain.RunState, error) {
	ret := m.ctrl.Call(m, "GetByProject", ctx, projectID, userID)
	ret0, _ := ret[0].(*domain.RunState)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByProject indicates an expected call of GetByProject
func (mr *MockRunStateRepositoryMockRecorder) GetByProject(ctx, projectID, userID interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByProject", reflect.TypeOf((*MockRunStateRepository)(nil).GetByProject), ctx, projectID, userID)
}

// Upsert mocks base method
func (m *MockRunStateRepository) Upsert(ctx context.Context, userID, projectID string, patch *domain.RunStatePatch) (*domain.RunState, error) {
	ret := m.ctrl.Call(m, "Upsert", ctx, userID, projectID, patch)
	ret0, _ := ret[0].(*domain.RunState)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Upsert indicates an expected call of Upsert
func (mr *MockRunStateRepositoryMockRecorder) Upsert(ctx, userID, projectID, patch interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockRunStateRepository)(nil).Upsert), ctx, userID, projectID, patch)
}

// Delete mocks base method
func (m *MockRunStateRepository) Delete(ctx context.Context, projectID, userID string) (bool, error) {
	ret := m.ctrl.Call(m, "Delete", ctx, projectID, userID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Delete indicates an expected call of Delete
func (mr *MockRunStateRepositoryMockRecorder) Delete(ctx, projectID, userID interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockRunStateRepository)(nil).Delete), ctx, projectID, userID)
}
