package services

import (
	"context"
	"errors"
	"testing"

	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CompanyServiceTestSuite struct {
	suite.Suite
	companyRepo *MockCompanyRepository
	userRepo    *MockUserRepository
	cache       *MockCacheService
	svc         CompanyService
}

func (s *CompanyServiceTestSuite) SetupTest() {
	s.companyRepo = &MockCompanyRepository{}
	s.userRepo = &MockUserRepository{}
	s.cache = &MockCacheService{}
	s.svc = NewCompanyService(s.companyRepo, s.userRepo, s.cache)
}

func TestCompanyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyServiceTestSuite))
}

func (s *CompanyServiceTestSuite) TestDirectoryServedFromCache() {
	cached := []*models.Company{{Code: uuid.New(), Name: "Acme", IsActive: true}}
	s.cache.On("GetCompanyList", mock.Anything).Return(cached, nil)

	got, err := s.svc.Directory(context.Background())

	s.NoError(err)
	s.Equal(cached, got)
	s.companyRepo.AssertNotCalled(s.T(), "List", mock.Anything)
}

func (s *CompanyServiceTestSuite) TestDirectoryCacheMissFillsCache() {
	companies := []*models.Company{{Code: uuid.New(), Name: "Acme", IsActive: true}}
	s.cache.On("GetCompanyList", mock.Anything).Return(nil, nil)
	s.companyRepo.On("List", mock.Anything).Return(companies, nil)
	s.cache.On("SetCompanyList", mock.Anything, companies, companyCacheTTL).Return(nil)

	got, err := s.svc.Directory(context.Background())

	s.NoError(err)
	s.Equal(companies, got)
	s.cache.AssertExpectations(s.T())
}

func (s *CompanyServiceTestSuite) TestDirectoryCacheFailureFallsThroughToRepo() {
	companies := []*models.Company{{Code: uuid.New(), Name: "Acme", IsActive: true}}
	s.cache.On("GetCompanyList", mock.Anything).Return(nil, errors.New("redis down"))
	s.companyRepo.On("List", mock.Anything).Return(companies, nil)
	s.cache.On("SetCompanyList", mock.Anything, companies, companyCacheTTL).Return(errors.New("redis down"))

	got, err := s.svc.Directory(context.Background())

	s.NoError(err)
	s.Equal(companies, got)
}

func (s *CompanyServiceTestSuite) TestGetByCodeUnknownCompany() {
	code := uuid.New()
	s.cache.On("GetCompany", mock.Anything, code).Return(nil, nil)
	s.companyRepo.On("GetByCode", mock.Anything, code).Return(nil, repositories.ErrNotFound)

	_, err := s.svc.GetByCode(context.Background(), code)

	s.ErrorIs(err, ErrCompanyNotFound)
}

func (s *CompanyServiceTestSuite) TestGetByCodeCrossReferencesUserStats() {
	company := &models.Company{Code: uuid.New(), Name: "Acme", IsActive: true}
	s.cache.On("GetCompany", mock.Anything, company.Code).Return(company, nil)
	s.userRepo.On("CompanyUserStats", mock.Anything).Return(map[uuid.UUID]*models.CompanyStatus{
		company.Code: {UserCount: 7, ActiveUserCount: 5},
	}, nil)

	status, err := s.svc.GetByCode(context.Background(), company.Code)

	s.NoError(err)
	s.Equal(7, status.UserCount)
	s.Equal(5, status.ActiveUserCount)
	s.Equal(company.Name, status.Name)
}

func (s *CompanyServiceTestSuite) TestListScopedToOneCompany() {
	mine := &models.Company{Code: uuid.New(), Name: "Mine", IsActive: true}
	other := &models.Company{Code: uuid.New(), Name: "Other", IsActive: true}
	s.cache.On("GetCompanyList", mock.Anything).Return([]*models.Company{mine, other}, nil)
	s.userRepo.On("CompanyUserStats", mock.Anything).Return(map[uuid.UUID]*models.CompanyStatus{}, nil)

	out, err := s.svc.List(context.Background(), &mine.Code)

	s.NoError(err)
	s.Len(out, 1)
	s.Equal(mine.Code, out[0].Code)
}
