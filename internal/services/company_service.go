package services

import (
	"context"
	"errors"
	"log"
	"time"

	"adminportal/internal/caching"
	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
)

// ErrCompanyNotFound is returned when a code matches no directory entry.
var ErrCompanyNotFound = errors.New("company not found")

const companyCacheTTL = 5 * time.Minute

// CompanyService reads the external directory and cross-references it with
// the portal's own account data. The directory is read-only.
type CompanyService interface {
	// List returns directory entries with user counts. When scope is
	// non-nil only that company is returned.
	List(ctx context.Context, scope *uuid.UUID) ([]*models.CompanyStatus, error)
	// Directory returns the raw directory listing.
	Directory(ctx context.Context) ([]*models.Company, error)
	GetByCode(ctx context.Context, code uuid.UUID) (*models.CompanyStatus, error)
}

type companyService struct {
	companyRepo repositories.CompanyRepository
	userRepo    repositories.UserRepository
	cache       caching.CacheService
}

func NewCompanyService(companyRepo repositories.CompanyRepository, userRepo repositories.UserRepository, cache caching.CacheService) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

func (s *companyService) Directory(ctx context.Context) ([]*models.Company, error) {
	if cached, err := s.cache.GetCompanyList(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: company list cache read failed: %v", err)
	}

	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetCompanyList(ctx, companies, companyCacheTTL); err != nil {
		log.Printf("WARN: company list cache write failed: %v", err)
	}
	return companies, nil
}

func (s *companyService) List(ctx context.Context, scope *uuid.UUID) ([]*models.CompanyStatus, error) {
	companies, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.userRepo.CompanyUserStats(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.CompanyStatus
	for _, company := range companies {
		if scope != nil && company.Code != *scope {
			continue
		}
		status := &models.CompanyStatus{Company: *company}
		if st, ok := stats[company.Code]; ok {
			status.UserCount = st.UserCount
			status.ActiveUserCount = st.ActiveUserCount
			status.LastUserCreated = st.LastUserCreated
		}
		out = append(out, status)
	}
	return out, nil
}

func (s *companyService) GetByCode(ctx context.Context, code uuid.UUID) (*models.CompanyStatus, error) {
	company, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	stats, err := s.userRepo.CompanyUserStats(ctx)
	if err != nil {
		return nil, err
	}

	status := &models.CompanyStatus{Company: *company}
	if st, ok := stats[code]; ok {
		status.UserCount = st.UserCount
		status.ActiveUserCount = st.ActiveUserCount
		status.LastUserCreated = st.LastUserCreated
	}
	return status, nil
}

func (s *companyService) lookup(ctx context.Context, code uuid.UUID) (*models.Company, error) {
	if cached, err := s.cache.GetCompany(ctx, code); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: company cache read failed: %v", err)
	}

	company, err := s.companyRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	if err := s.cache.SetCompany(ctx, company, companyCacheTTL); err != nil {
		log.Printf("WARN: company cache write failed: %v", err)
	}
	return company, nil
}
