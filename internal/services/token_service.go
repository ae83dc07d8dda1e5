package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"adminportal/internal/metrics"
	"adminportal/internal/models"
	"adminportal/internal/repositories"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRefreshToken is the generic rotation failure. It carries no
	// information about whether the presented value ever existed.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrTokenNotFound distinguishes revoking an unknown token from the
	// idempotent revoke of an already-revoked one.
	ErrTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenService owns the refresh token lifecycle: issue, rotate-on-use,
// revoke, revoke-family on reuse, revoke-all-for-user.
type RefreshTokenService interface {
	Issue(ctx context.Context, user *models.User, ip, userAgent string) (raw string, token *models.RefreshToken, err error)
	// Rotate consumes a presented raw token and returns its successor plus
	// the owning user. Presenting an already-revoked token revokes the whole
	// family (reuse detection) and fails.
	Rotate(ctx context.Context, rawToken, ip, userAgent string) (raw string, user *models.User, err error)
	// Revoke is idempotent for already-revoked tokens and returns
	// ErrTokenNotFound for unknown ones.
	Revoke(ctx context.Context, rawToken, reason, ip string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error)
}

type refreshTokenService struct {
	tokenRepo repositories.RefreshTokenRepository
	userRepo  repositories.UserRepository
	actionLog ActionLogService
	lifetime  time.Duration
	now       func() time.Time
}

func NewRefreshTokenService(tokenRepo repositories.RefreshTokenRepository, userRepo repositories.UserRepository, actionLog ActionLogService, lifetime time.Duration) RefreshTokenService {
	// Anything shorter than a day breaks the rotation contract.
	if lifetime < 24*time.Hour {
		lifetime = 24 * time.Hour
	}
	return &refreshTokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		actionLog: actionLog,
		lifetime:  lifetime,
		now:       time.Now,
	}
}

func (s *refreshTokenService) Issue(ctx context.Context, user *models.User, ip, userAgent string) (string, *models.RefreshToken, error) {
	raw, err := generateSecureToken()
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	token := &models.RefreshToken{
		ID:               uuid.New(),
		UserID:           user.ID,
		FamilyID:         uuid.New(),
		TokenHash:        hashToken(raw),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.lifetime),
		CreatedIP:        ip,
		CreatedUserAgent: userAgent,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return raw, token, nil
}

func (s *refreshTokenService) Rotate(ctx context.Context, rawToken, ip, userAgent string) (string, *models.User, error) {
	current, err := s.tokenRepo.GetByHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.TokenRotationsTotal.WithLabelValues("invalid").Inc()
			return "", nil, ErrInvalidRefreshToken
		}
		return "", nil, err
	}

	now := s.now().UTC()

	if current.IsRevoked() {
		// Reuse detected: a token that was already consumed (or otherwise
		// killed) came back. Kill the entire lineage.
		revoked, famErr := s.tokenRepo.RevokeFamily(ctx, current.FamilyID, models.RevokeReasonReuseDetected, ip)
		if famErr != nil {
			return "", nil, famErr
		}
		metrics.TokenRotationsTotal.WithLabelValues("reuse_detected").Inc()
		metrics.TokensRevokedTotal.WithLabelValues(models.RevokeReasonReuseDetected).Add(float64(revoked))
		s.actionLog.Record(ctx, &current.UserID, models.ActionTokenReuse, models.JSONB{
			"family_id":      current.FamilyID.String(),
			"tokens_revoked": revoked,
			"ip":             ip,
		})
		return "", nil, ErrInvalidRefreshToken
	}

	if current.IsExpired(now) {
		if err := s.tokenRepo.Revoke(ctx, current.ID, models.RevokeReasonExpired, ip); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", nil, err
		}
		metrics.TokenRotationsTotal.WithLabelValues("expired").Inc()
		return "", nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidRefreshToken
		}
		return "", nil, err
	}
	if !user.IsActive || !user.HasCompany() {
		if err := s.tokenRepo.Revoke(ctx, current.ID, models.RevokeReasonInactiveUser, ip); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", nil, err
		}
		metrics.TokenRotationsTotal.WithLabelValues("inactive_user").Inc()
		return "", nil, ErrInvalidRefreshToken
	}

	// Issue the successor in the same family, then retire the consumed token.
	// Not wrapped in a transaction: the two statements touch disjoint rows
	// and the decision already happened above.
	raw, err := generateSecureToken()
	if err != nil {
		return "", nil, err
	}
	successor := &models.RefreshToken{
		ID:               uuid.New(),
		UserID:           user.ID,
		FamilyID:         current.FamilyID,
		TokenHash:        hashToken(raw),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.lifetime),
		CreatedIP:        ip,
		CreatedUserAgent: userAgent,
	}
	if err := s.tokenRepo.Create(ctx, successor); err != nil {
		return "", nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := s.tokenRepo.MarkRotated(ctx, current.ID, successor.ID, ip); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the race to a concurrent rotation of the same token; the
			// other caller's family revoke will clean up our successor.
			metrics.TokenRotationsTotal.WithLabelValues("invalid").Inc()
			return "", nil, ErrInvalidRefreshToken
		}
		return "", nil, err
	}

	metrics.TokenRotationsTotal.WithLabelValues("success").Inc()
	return raw, user, nil
}

func (s *refreshTokenService) Revoke(ctx context.Context, rawToken, reason, ip string) error {
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if token.IsRevoked() {
		// Already in the requested state.
		return nil
	}
	if err := s.tokenRepo.Revoke(ctx, token.ID, reason, ip); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil // revoked concurrently
		}
		return err
	}
	metrics.TokensRevokedTotal.WithLabelValues(reason).Inc()
	return nil
}

func (s *refreshTokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	count, err := s.tokenRepo.RevokeAllForUser(ctx, userID, reason)
	if err != nil {
		return 0, err
	}
	metrics.TokensRevokedTotal.WithLabelValues(reason).Add(float64(count))
	return count, nil
}

// generateSecureToken returns a cryptographically random opaque token.
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// hashToken is the one-way form stored in the database.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
