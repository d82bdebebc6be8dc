package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus is the account status.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents a users row. Points is the single source of truth for spendable balance.
type User struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Name         string          `json:"name,omitempty"`
	Role         Role            `json:"role"`
	Country      string          `json:"country"`
	Region       string          `json:"region"`
	Points       int64           `json:"points"`
	Balance      decimal.Decimal `json:"balance"`
	Status       UserStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Identity is the authenticated caller, passed explicitly into every core operation.
type Identity struct {
	UserID uuid.UUID
	Role   Role
	Email  string
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// RequireAdmin returns FORBIDDEN unless the identity is an admin.
func (i Identity) RequireAdmin() error {
	if i.UserID == uuid.Nil {
		return ErrUnauthorized("no identity")
	}
	if !i.IsAdmin() {
		return ErrForbidden("admin role required")
	}
	return nil
}

// UserFilter narrows admin user searches. Query matches email or name.
type UserFilter struct {
	Query  string
	Role   Role
	Status UserStatus
	Limit  int
	Offset int
}
