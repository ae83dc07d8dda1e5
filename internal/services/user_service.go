package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
)

var (
	// ErrWrongPassword is returned when the current password does not verify
	// during a password change.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSamePassword rejects reusing the current password.
	ErrSamePassword = errors.New("new password must differ from the current one")
	// ErrUnknownCompany rejects assigning a user to a code the directory does
	// not know.
	ErrUnknownCompany = errors.New("company code not found in directory")
)

// CreateUserInput carries the fields an administrator supplies for a new
// account. CompanyCode may be the zero UUID (no tenant yet; the account
// cannot refresh sessions until one is assigned).
type CreateUserInput struct {
	Username    string
	DisplayName string
	Password    string
	Roles       []string
	CompanyCode uuid.UUID
}

// UpdateUserInput carries the mutable account fields. Nil pointers mean
// "leave unchanged".
type UpdateUserInput struct {
	DisplayName *string
	Roles       []string
	CompanyCode *uuid.UUID
	IsActive    *bool
}

// UserService owns account lifecycle and self-service password changes.
type UserService interface {
	Create(ctx context.Context, actorID uuid.UUID, input *CreateUserInput) (*models.User, error)
	Update(ctx context.Context, actorID uuid.UUID, user *models.User, input *UpdateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error)
	// ChangePassword verifies the current password, applies the policy, swaps
	// the hash and revokes every active refresh token of the user. Returns the
	// number of revoked tokens.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, ip string) (int64, error)
}

type userService struct {
	userRepo    repositories.UserRepository
	companyRepo repositories.CompanyRepository
	hasher      *PasswordHasher
	policy      *PasswordPolicy
	tokens      RefreshTokenService
	actionLog   ActionLogService
}

func NewUserService(
	userRepo repositories.UserRepository,
	companyRepo repositories.CompanyRepository,
	hasher *PasswordHasher,
	policy *PasswordPolicy,
	tokens RefreshTokenService,
	actionLog ActionLogService,
) UserService {
	return &userService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		hasher:      hasher,
		policy:      policy,
		tokens:      tokens,
		actionLog:   actionLog,
	}
}

func (s *userService) Create(ctx context.Context, actorID uuid.UUID, input *CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if err := s.policy.Validate(username, input.Password); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Roles:       models.NormalizeRoles(input.Roles),
		IsActive:    true,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{models.RoleViewer}
	}

	if err := s.applyCompany(ctx, user, input.CompanyCode); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.actionLog.Record(ctx, &actorID, models.ActionUserCreated, models.JSONB{
		"target_user_id": user.ID.String(),
		"username":       user.Username,
		"company_code":   user.CompanyCode.String(),
		"roles":          user.Roles,
	})
	return user, nil
}

func (s *userService) Update(ctx context.Context, actorID uuid.UUID, user *models.User, input *UpdateUserInput) (*models.User, error) {
	changed := models.JSONB{}

	if input.DisplayName != nil && *input.DisplayName != user.DisplayName {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
		changed["display_name"] = user.DisplayName
	}
	if input.Roles != nil {
		user.Roles = models.NormalizeRoles(input.Roles)
		if len(user.Roles) == 0 {
			user.Roles = []string{models.RoleViewer}
		}
		changed["roles"] = user.Roles
	}
	if input.CompanyCode != nil && *input.CompanyCode != user.CompanyCode {
		if err := s.applyCompany(ctx, user, *input.CompanyCode); err != nil {
			return nil, err
		}
		changed["company_code"] = user.CompanyCode.String()
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		user.IsActive = *input.IsActive
		changed["is_active"] = user.IsActive
	}

	if len(changed) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Deactivation cuts sessions immediately instead of waiting for the next
	// rotation to notice.
	if input.IsActive != nil && !user.IsActive {
		if _, err := s.tokens.RevokeAllForUser(ctx, user.ID, models.RevokeReasonInactiveUser); err != nil {
			return nil, err
		}
	}

	changed["target_user_id"] = user.ID.String()
	s.actionLog.Record(ctx, &actorID, models.ActionUserUpdated, changed)
	return user, nil
}

// applyCompany denormalizes directory fields onto the account. The zero UUID
// clears the assignment.
func (s *userService) applyCompany(ctx context.Context, user *models.User, code uuid.UUID) error {
	if code == uuid.Nil {
		user.CompanyCode = uuid.Nil
		user.CompanyName = ""
		user.CompanyActive = false
		return nil
	}
	company, err := s.companyRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUnknownCompany
		}
		return err
	}
	user.CompanyCode = company.Code
	user.CompanyName = company.Name
	user.CompanyActive = company.IsActive
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, companyCode *uuid.UUID, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, companyCode, limit, offset)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, ip string) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return 0, ErrWrongPassword
	}
	if currentPassword == newPassword {
		return 0, ErrSamePassword
	}
	if err := s.policy.Validate(user.Username, newPassword); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return 0, err
	}

	revoked, err := s.tokens.RevokeAllForUser(ctx, userID, models.RevokeReasonPasswordChanged)
	if err != nil {
		return 0, err
	}

	s.actionLog.Record(ctx, &userID, models.ActionPasswordChanged, models.JSONB{
		"ip":             ip,
		"tokens_revoked": revoked,
		"changed_at":     time.Now().UTC().Format(time.RFC3339),
	})
	return revoked, nil
}
