package handlers

import (
	"context"
	"time"

	"adminportal/internal/models"
	"adminportal/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ip, userAgent string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, rawRefreshToken, ip, userAgent string) (*services.LoginResult, error) {
	args := m.Called(ctx, rawRefreshToken, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, rawRefreshToken, ip string, userID *uuid.UUID) error {
	args := m.Called(ctx, rawRefreshToken, ip, userID)
	return args.Error(0)
}

func (m *MockAuthService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, actorID uuid.UUID, input *services.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actorID uuid.UUID, user *models.User, input *services.UpdateUserInput) (*models.User, error) {
	args := m.Called(ctx, actorID, user, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, companyCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, ip string) (int64, error) {
	args := m.Called(ctx, userID, currentPassword, newPassword, ip)
	return args.Get(0).(int64), args.Error(1)
}

type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) List(ctx context.Context, scope *uuid.UUID) ([]*models.CompanyStatus, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CompanyStatus), args.Error(1)
}

func (m *MockCompanyService) Directory(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCompanyService) GetByCode(ctx context.Context, code uuid.UUID) (*models.CompanyStatus, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanyStatus), args.Error(1)
}

type MockActionLogService struct {
	mock.Mock
}

func (m *MockActionLogService) Record(ctx context.Context, userID *uuid.UUID, action string, metadata models.JSONB) {
	m.Called(ctx, userID, action, metadata)
}

func (m *MockActionLogService) List(ctx context.Context, filters *models.ActionLogFilters) ([]*models.ActionLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActionLog), args.Error(1)
}

func (m *MockActionLogService) ValidateFilters(filters *models.ActionLogFilters) error {
	args := m.Called(filters)
	return args.Error(0)
}
