package repositories

import (
	"context"
	"errors"

	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CompanyRepository reads the externally-owned company directory. The schema
// is not managed by this service and is never written to.
type CompanyRepository interface {
	List(ctx context.Context) ([]*models.Company, error)
	GetByCode(ctx context.Context, code uuid.UUID) (*models.Company, error)
}

type companyRepo struct {
	db DB
}

func NewCompanyRepo(db DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) List(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT code, name, is_active FROM directory.companies ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.Code, &company.Name, &company.IsActive); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *companyRepo) GetByCode(ctx context.Context, code uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	query := `SELECT code, name, is_active FROM directory.companies WHERE code = $1`
	err := r.db.QueryRow(ctx, query, code).Scan(&company.Code, &company.Name, &company.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return company, nil
}
