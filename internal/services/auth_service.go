package services

import (
	"context"
	"errors"
	"time"

	"adminportal/internal/metrics"
	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials covers unknown user, wrong password and inactive
	// account alike; callers must not leak which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLockedOut is returned while a (username, ip) pair is in cooldown.
	ErrLockedOut = errors.New("too many failed attempts")
)

// LoginResult is what a successful authentication yields.
type LoginResult struct {
	User   *models.User
	Tokens *models.TokenPair
}

// LockoutError wraps ErrLockedOut with the remaining cooldown.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string { return ErrLockedOut.Error() }
func (e *LockoutError) Unwrap() error { return ErrLockedOut }

// AccessClaims is the JWT payload for access tokens.
type AccessClaims struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	CompanyCode string   `json:"company_code"`
	CompanyName string   `json:"company_name"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService verifies credentials and mints token pairs.
type AuthService interface {
	Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error)
	Refresh(ctx context.Context, rawRefreshToken, ip, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context, rawRefreshToken, ip string, userID *uuid.UUID) error
	GenerateAccessToken(user *models.User) (string, time.Time, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	tokens    RefreshTokenService
	lockout   *LockoutService
	hasher    *PasswordHasher
	actionLog ActionLogService
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens RefreshTokenService,
	lockout *LockoutService,
	hasher *PasswordHasher,
	actionLog ActionLogService,
	jwtSecret string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		lockout:   lockout,
		hasher:    hasher,
		actionLog: actionLog,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
	}
}

func (s *authService) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	if status := s.lockout.Status(username, ip); status.Locked {
		metrics.LoginsTotal.WithLabelValues("locked_out").Inc()
		return nil, &LockoutError{RetryAfter: status.RetryAfter}
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// A missing user still burns a hash verification so the timing of the
	// generic failure does not reveal whether the username exists.
	verified := false
	if user != nil {
		verified = s.hasher.Verify(user.PasswordHash, password)
	} else {
		s.hasher.Verify("pbkdf2_sha256$210000$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", password)
	}

	if user == nil || !verified || !user.IsActive {
		return nil, s.failLogin(ctx, user, username, ip)
	}

	s.lockout.RecordSuccess(username, ip)

	tokens, err := s.issuePair(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.actionLog.Record(ctx, &user.ID, models.ActionLogin, models.JSONB{
		"ip":         ip,
		"user_agent": userAgent,
	})
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *authService) failLogin(ctx context.Context, user *models.User, username, ip string) error {
	status := s.lockout.RecordFailure(username, ip)

	var actor *uuid.UUID
	if user != nil {
		actor = &user.ID
	}
	metadata := models.JSONB{"username": username, "ip": ip}

	if status.Locked {
		metrics.LoginsTotal.WithLabelValues("locked_out").Inc()
		metadata["retry_after_seconds"] = int(status.RetryAfter.Seconds())
		s.actionLog.Record(ctx, actor, models.ActionLoginLockout, metadata)
		return &LockoutError{RetryAfter: status.RetryAfter}
	}

	metrics.LoginsTotal.WithLabelValues("failed").Inc()
	s.actionLog.Record(ctx, actor, models.ActionLoginFailed, metadata)
	return ErrInvalidCredentials
}

func (s *authService) Refresh(ctx context.Context, rawRefreshToken, ip, userAgent string) (*LoginResult, error) {
	newRaw, user, err := s.tokens.Rotate(ctx, rawRefreshToken, ip, userAgent)
	if err != nil {
		return nil, err
	}

	accessToken, issuedAt, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.actionLog.Record(ctx, &user.ID, models.ActionTokenRefresh, models.JSONB{"ip": ip})
	return &LoginResult{
		User: user,
		Tokens: &models.TokenPair{
			AccessToken:  accessToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.accessTTL.Seconds()),
			RefreshToken: newRaw,
			IssuedAt:     issuedAt,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, rawRefreshToken, ip string, userID *uuid.UUID) error {
	err := s.tokens.Revoke(ctx, rawRefreshToken, models.RevokeReasonLogout, ip)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return err
	}
	s.actionLog.Record(ctx, userID, models.ActionLogout, models.JSONB{"ip": ip})
	return nil
}

func (s *authService) issuePair(ctx context.Context, user *models.User, ip, userAgent string) (*models.TokenPair, error) {
	accessToken, issuedAt, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	rawRefresh, _, err := s.tokens.Issue(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		RefreshToken: rawRefresh,
		IssuedAt:     issuedAt,
	}, nil
}

func (s *authService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	claims := AccessClaims{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CompanyCode: user.CompanyCode.String(),
		CompanyName: user.CompanyName,
		Roles:       user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "adminportal-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"adminportal-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}
