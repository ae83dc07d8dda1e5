package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names carried in JWT claims and stored on the user row. Admin and
// Supervisor bypass tenant isolation on every endpoint.
const (
	RoleAdmin        = "Admin"
	RoleSupervisor   = "Supervisor"
	RoleCompanyAdmin = "CompanyAdmin"
	RoleViewer       = "Viewer"
)

// User is a portal account. CompanyCode of uuid.Nil means the account has no
// tenant assigned and is ineligible for tenant-scoped reads.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	PasswordHash  string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Roles         []string  `json:"roles" db:"roles"`
	CompanyCode   uuid.UUID `json:"company_code" db:"company_code"`
	CompanyName   string    `json:"company_name" db:"company_name"`
	CompanyActive bool      `json:"company_active" db:"company_active"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HasRole reports role membership, case-insensitively.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsElevated reports whether the user bypasses tenant isolation.
func (u *User) IsElevated() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSupervisor)
}

// HasCompany reports whether a tenant is assigned.
func (u *User) HasCompany() bool {
	return u.CompanyCode != uuid.Nil
}

// NormalizeRoles de-duplicates a role set case-insensitively, keeping the
// first spelling seen and dropping blanks.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		key := strings.ToLower(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
