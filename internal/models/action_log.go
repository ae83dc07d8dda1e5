package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents a PostgreSQL jsonb column.
type JSONB map[string]interface{}

// Action tags recorded in user_action_logs.
const (
	ActionLogin           = "login"
	ActionLoginFailed     = "login_failed"
	ActionLoginLockout    = "login_lockout"
	ActionLogout          = "logout"
	ActionTokenRefresh    = "token_refresh"
	ActionTokenReuse      = "token_reuse_detected"
	ActionPasswordChanged = "password_changed"
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
	ActionAccessDenied    = "access_denied"
)

// Denial reasons attached to access_denied entries.
const (
	DenialMissingCompanyClaim      = "MissingCompanyClaim"
	DenialCrossTenantUserDenied    = "CrossTenantUserDenied"
	DenialCrossTenantCompanyDenied = "CrossTenantCompanyDenied"
	DenialCrossTenantAuditDenied   = "CrossTenantAuditDenied"
	DenialReadOnlyDirectory        = "ReadOnlyDirectory"
)

// ActionLog is an append-only audit row. UserID is nil for entries recorded
// before a caller was authenticated (failed logins, missing-claim denials).
type ActionLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Action    string     `json:"action" db:"action"`
	Metadata  JSONB      `json:"metadata" db:"metadata"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ActionLogFilters narrows audit queries. CompanyCode, when set, restricts
// results to entries whose actor belongs to that tenant.
type ActionLogFilters struct {
	Action      *string    `json:"action"`
	UserID      *uuid.UUID `json:"user_id"`
	CompanyCode *uuid.UUID `json:"company_code"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
