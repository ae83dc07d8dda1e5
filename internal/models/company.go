package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant. Rows live in the externally-owned directory schema and
// are read-only from this service's point of view.
type Company struct {
	Code     uuid.UUID `json:"code" db:"code"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// CompanyStatus is a directory entry cross-referenced with the portal's own
// account data for that tenant.
type CompanyStatus struct {
	Company
	UserCount       int        `json:"user_count"`
	ActiveUserCount int        `json:"active_user_count"`
	LastUserCreated *time.Time `json:"last_user_created,omitempty"`
}
