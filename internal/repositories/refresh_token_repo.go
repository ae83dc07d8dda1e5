package repositories

import (
	"context"
	"errors"
	"time"

	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// MarkRotated revokes the consumed token with reason "rotated" and links
	// it to its successor in the same family.
	MarkRotated(ctx context.Context, id, successorID uuid.UUID, ip string) error
	Revoke(ctx context.Context, id uuid.UUID, reason, ip string) error
	// RevokeFamily revokes every still-active token sharing a family id.
	// Returns the number of tokens revoked.
	RevokeFamily(ctx context.Context, familyID uuid.UUID, reason, ip string) (int64, error)
	// RevokeAllForUser revokes every currently-active token for a user.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error)
	// DeleteDead removes rows that expired or were revoked before the cutoff.
	DeleteDead(ctx context.Context, cutoff time.Time) (int64, error)
}

type refreshTokenRepo struct {
	db DB
}

func NewRefreshTokenRepo(db DB) RefreshTokenRepository {
	return &refreshTokenRepo{db: db}
}

const tokenColumns = `id, user_id, family_id, token_hash, created_at, expires_at, created_ip, created_user_agent, revoked_at, revoked_reason, revoked_ip, replaced_by`

func (r *refreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO user_refresh_tokens (id, user_id, family_id, token_hash, created_at, expires_at, created_ip, created_user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.FamilyID, token.TokenHash,
		token.CreatedAt, token.ExpiresAt, token.CreatedIP, token.CreatedUserAgent)
	return err
}

func (r *refreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	query := `SELECT ` + tokenColumns + ` FROM user_refresh_tokens WHERE token_hash = $1`
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.FamilyID, &token.TokenHash,
		&token.CreatedAt, &token.ExpiresAt, &token.CreatedIP, &token.CreatedUserAgent,
		&token.RevokedAt, &token.RevokedReason, &token.RevokedIP, &token.ReplacedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

func (r *refreshTokenRepo) MarkRotated(ctx context.Context, id, successorID uuid.UUID, ip string) error {
	query := `
		UPDATE user_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1, revoked_ip = $2, replaced_by = $3
		WHERE id = $4 AND revoked_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, models.RevokeReasonRotated, ip, successorID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *refreshTokenRepo) Revoke(ctx context.Context, id uuid.UUID, reason, ip string) error {
	// Revocation is terminal: the guard keeps already-revoked rows immutable.
	query := `
		UPDATE user_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1, revoked_ip = $2
		WHERE id = $3 AND revoked_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, reason, ip, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *refreshTokenRepo) RevokeFamily(ctx context.Context, familyID uuid.UUID, reason, ip string) (int64, error) {
	query := `
		UPDATE user_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1, revoked_ip = $2
		WHERE family_id = $3 AND revoked_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, reason, ip, familyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	query := `
		UPDATE user_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1
		WHERE user_id = $2 AND revoked_at IS NULL AND expires_at > NOW()
	`
	tag, err := r.db.Exec(ctx, query, reason, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokenRepo) DeleteDead(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM user_refresh_tokens
		WHERE expires_at < $1 OR revoked_at < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
