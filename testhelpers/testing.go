package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=adminportal_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestCompany inserts a directory entry and returns its code.
func SetupTestCompany(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	code := uuid.New()
	query := `
		INSERT INTO directory.companies (code, name, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (code) DO NOTHING
	`
	if _, err := db.Pool.Exec(context.Background(), query, code, "Test Company"); err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}
	return code
}

// SetupTestUser inserts an active account in the given company.
func SetupTestUser(t *testing.T, db *TestDB, companyCode uuid.UUID, username, passwordHash string, roles []string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	query := `
		INSERT INTO users (id, username, display_name, password_hash, roles, company_code, company_name, company_active, is_active, created_at, updated_at)
		VALUES ($1, $2, $2, $3, $4, $5, 'Test Company', true, true, NOW(), NOW())
	`
	if _, err := db.Pool.Exec(context.Background(), query, userID, username, passwordHash, roles, companyCode); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

// SetupTestRefreshToken inserts an active refresh token row for a user.
func SetupTestRefreshToken(t *testing.T, db *TestDB, userID uuid.UUID, tokenHash string) *models.RefreshToken {
	t.Helper()

	now := time.Now().UTC()
	token := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		FamilyID:  uuid.New(),
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
	query := `
		INSERT INTO user_refresh_tokens (id, user_id, family_id, token_hash, created_at, expires_at, created_ip, created_user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, '', '')
	`
	_, err := db.Pool.Exec(context.Background(), query,
		token.ID, token.UserID, token.FamilyID, token.TokenHash, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		t.Fatalf("Failed to create test refresh token: %v", err)
	}
	return token
}

// CleanupTestData removes rows created by the helpers above.
func CleanupTestData(t *testing.T, db *TestDB, userIDs ...uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	for _, id := range userIDs {
		if _, err := db.Pool.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1`, id); err != nil {
			t.Logf("cleanup refresh tokens for %s: %v", id, err)
		}
		if _, err := db.Pool.Exec(ctx, `DELETE FROM user_action_logs WHERE user_id = $1`, id); err != nil {
			t.Logf("cleanup action logs for %s: %v", id, err)
		}
		if _, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			t.Logf("cleanup user %s: %v", id, err)
		}
	}
}
