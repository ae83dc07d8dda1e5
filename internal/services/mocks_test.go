package services

import (
	"context"
	"time"

	"adminportal/internal/caching"
	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, companyCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CompanyUserStats(ctx context.Context) (map[uuid.UUID]*models.CompanyStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.CompanyStatus), args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkRotated(ctx context.Context, id, successorID uuid.UUID, ip string) error {
	args := m.Called(ctx, id, successorID, ip)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, reason, ip string) error {
	args := m.Called(ctx, id, reason, ip)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeFamily(ctx context.Context, familyID uuid.UUID, reason, ip string) (int64, error) {
	args := m.Called(ctx, familyID, reason, ip)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	args := m.Called(ctx, userID, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteDead(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetByCode(ctx context.Context, code uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

var _ caching.CacheService = (*MockCacheService)(nil)

func (m *MockCacheService) GetCompany(ctx context.Context, code uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	args := m.Called(ctx, company, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetCompanyList(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCacheService) SetCompanyList(ctx context.Context, companies []*models.Company, ttl time.Duration) error {
	args := m.Called(ctx, companies, ttl)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
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

type MockRefreshTokenService struct {
	mock.Mock
}

func (m *MockRefreshTokenService) Issue(ctx context.Context, user *models.User, ip, userAgent string) (string, *models.RefreshToken, error) {
	args := m.Called(ctx, user, ip, userAgent)
	var token *models.RefreshToken
	if args.Get(1) != nil {
		token = args.Get(1).(*models.RefreshToken)
	}
	return args.String(0), token, args.Error(2)
}

func (m *MockRefreshTokenService) Rotate(ctx context.Context, rawToken, ip, userAgent string) (string, *models.User, error) {
	args := m.Called(ctx, rawToken, ip, userAgent)
	var user *models.User
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockRefreshTokenService) Revoke(ctx context.Context, rawToken, reason, ip string) error {
	args := m.Called(ctx, rawToken, reason, ip)
	return args.Error(0)
}

func (m *MockRefreshTokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	args := m.Called(ctx, userID, reason)
	return args.Get(0).(int64), args.Error(1)
}
