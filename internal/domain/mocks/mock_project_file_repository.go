package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/forgehq/forge/internal/domain"
)

// MockProjectFileRepository is a mock of ProjectFileRepository interface
type MockProjectFileRepository struct {
	ctrl     *gomock.Controller
	recorder *MockProjectFileRepositoryMockRecorder
}

// MockProjectFileRepositoryMockRecorder is the mock recorder for MockProjectFileRepository
type MockProjectFileRepositoryMockRecorder struct {
	mock *MockProjectFileRepository
}

// NewMockProjectFileRepository creates a new mock instance
func NewMockProjectFileRepository(ctrl *gomock.Controller) *MockProjectFileRepository {
	mock := &MockProjectFileRepository{ctrl: ctrl}
	mock.recorder = &MockProjectFileRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockProjectFileRepository) EXPECT() *MockProjectFileRepositoryMockRecorder {
	return m.recorder
}

// ListByProject mocks base method
func (m *MockProjectFileRepository) ListByProject(ctx context.Context, projectID, userID string) ([]*domain.ProjectFile, error) {
	ret := m.ctrl.Call(m, "ListByProject", ctx, projectID, userID)
	ret0, _ := ret[0].([]*domain.ProjectFile)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByProject indicates an expected call of ListByProject
func (mr *MockProjectFileRepositoryMockRecorder) ListByProject(ctx, projectID, userID interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByProject", reflect.TypeOf((*MockProjectFileRepository)(nil).ListByProject), ctx, projectID, userID)
}

// Get mocks base method
func (m *MockProjectFileRepository) Get(ctx context.Context, userID, projectID, path string) (*domain.ProjectFile, error) {
	ret := m.ctrl.Call(m, "Get", ctx, userID, projectID, path)
	ret0, _ := ret[0].(*domain.ProjectFile)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get
func (mr *MockProjectFileRepositoryMockRecorder) Get(ctx, userID, projectID, path interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockProjectFileRepository)(nil).Get), ctx, userID, projectID, path)
}

// Upsert mocks base method
func (m *MockProjectFileRepository) Upsert(ctx context.Context, userID string, input domain.FileUpsert) (*domain.ProjectFile, error) {
	ret := m.ctrl.Call(m, "Upsert", ctx, userID, input)
	ret0, _ := ret[0].(*domain.ProjectFile)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Upsert indicates an expected call of Upsert
func (mr *MockProjectFileRepositoryMockRecorder) Upsert(ctx, userID, input interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockProjectFileRepository)(nil).Upsert), ctx, userID, input)
}

// BulkUpsert mocks base method
func (m *MockProjectFileRepository) BulkUpsert(ctx context.Context, userID string, inputs []domain.FileUpsert) (int, error) {
	ret := m.ctrl.Call(m, "BulkUpsert", ctx, userID, inputs)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BulkUpsert indicates an expected call of BulkUpsert
func (mr *MockProjectFileRepositoryMockRecorder) BulkUpsert(ctx, userID, inputs interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BulkUpsert", reflect.TypeOf((*MockProjectFileRepository)(nil).BulkUpsert), ctx, userID, inputs)
}

// Delete mocks base method
func (m *MockProjectFileRepository) Delete(ctx context.Context, userID, projectID, path string) (bool, error) {
	ret := m.ctrl.Call(m, "Delete", ctx, userID, projectID, path)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Delete indicates an expected call of Delete
func (mr *MockProjectFileRepositoryMockRecorder) Delete(ctx, userID, projectID, path interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockProjectFileRepository)(nil).Delete), ctx, userID, projectID, path)
}
