package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"observer-console.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock VerificationSessionRepository
type MockVerificationSessionRepository struct {
	mock.Mock
}

func (m *MockVerificationSessionRepository) Create(ctx context.Context, session *entities.VerificationSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockVerificationSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationSession), args.Error(1)
}

func (m *MockVerificationSessionRepository) GetByVendorSessionID(ctx context.Context, vendorSessionID string) (*entities.VerificationSession, error) {
	args := m.Called(ctx, vendorSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationSession), args.Error(1)
}

func (m *MockVerificationSessionRepository) List(ctx context.Context, filter entities.VerificationFilter, limit, offset int) ([]*entities.VerificationSession, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.VerificationSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockVerificationSessionRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, expected entities.VerificationStatus, update *entities.VerificationUpdate) error {
	args := m.Called(ctx, id, expected, update)
	return args.Error(0)
}

func (m *MockVerificationSessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.VerificationStatus, at time.Time) error {
	args := m.Called(ctx, id, from, to, at)
	return args.Error(0)
}

func (m *MockVerificationSessionRepository) GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.VerificationSession, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.VerificationSession), args.Error(1)
}

// Mock UserProfileRepository
type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, update entities.ProfileVerificationUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

// Mock VerificationConfigRepository
type MockVerificationConfigRepository struct {
	mock.Mock
}

func (m *MockVerificationConfigRepository) GetActive(ctx context.Context) (*entities.VerificationConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationConfig), args.Error(1)
}

// MockCachedConfigRepository is a config repository that can drop its cache
type MockCachedConfigRepository struct {
	MockVerificationConfigRepository
}

func (m *MockCachedConfigRepository) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock VerificationVendor
type MockVendor struct {
	mock.Mock
}

func (m *MockVendor) CreateSession(ctx context.Context, req *entities.VendorSessionRequest) (*entities.VendorSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VendorSession), args.Error(1)
}

// Mock StatusEventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishStatusChanged(ctx context.Context, event entities.StatusChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
