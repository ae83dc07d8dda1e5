package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error)
	CompanyUserStats(ctx context.Context) (map[uuid.UUID]*models.CompanyStatus, error)
}

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, display_name, password_hash, roles, company_code, company_name, company_active, is_active, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	// Usernames are unique case-insensitively; check first so the caller gets
	// a conflict instead of a constraint violation.
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE lower(username) = lower($1)`, user.Username).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if count > 0 {
		return ErrDuplicateUsername
	}

	query := `
		INSERT INTO users (id, username, display_name, password_hash, roles, company_code, company_name, company_active, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.Username, user.DisplayName, user.PasswordHash, user.Roles,
		user.CompanyCode, user.CompanyName, user.CompanyActive, user.IsActive)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

func (r *userRepo) scanOne(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.Roles,
		&user.CompanyCode, &user.CompanyName, &user.CompanyActive, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET display_name = $1, roles = $2, company_code = $3, company_name = $4, company_active = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query,
		user.DisplayName, user.Roles, user.CompanyCode, user.CompanyName,
		user.CompanyActive, user.IsActive, user.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if companyCode != nil {
		query += ` WHERE company_code = $1`
		args = append(args, *companyCode)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.Roles,
			&user.CompanyCode, &user.CompanyName, &user.CompanyActive, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CompanyUserStats aggregates per-tenant account counts, used to
// cross-reference the external directory. Tenant-less accounts
// (company_code = zero UUID) are excluded.
func (r *userRepo) CompanyUserStats(ctx context.Context) (map[uuid.UUID]*models.CompanyStatus, error) {
	query := `
		SELECT company_code, COUNT(*), COUNT(*) FILTER (WHERE is_active), MAX(created_at)
		FROM users
		WHERE company_code <> '00000000-0000-0000-0000-000000000000'
		GROUP BY company_code
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[uuid.UUID]*models.CompanyStatus)
	for rows.Next() {
		var code uuid.UUID
		var total, active int
		var last time.Time
		if err := rows.Scan(&code, &total, &active, &last); err != nil {
			return nil, err
		}
		lastCopy := last
		stats[code] = &models.CompanyStatus{
			Company:         models.Company{Code: code},
			UserCount:       total,
			ActiveUserCount: active,
			LastUserCreated: &lastCopy,
		}
	}
	return stats, rows.Err()
}
