package identity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrRoleNotFound           = errors.New("role not found")
	ErrWorkstreamNotFound     = errors.New("workstream not found")
	ErrPermissionTypeNotFound = errors.New("permission type not found")
	ErrGrantNotFound          = errors.New("workstream grant not found")
)

// User is the identity record. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Role is a user's role joined with its type.
type Role struct {
	ID                int64  `json:"id" db:"id"`
	Name              string `json:"name" db:"name"`
	RoleTypeID        int64  `json:"role_type_id" db:"role_type_id"`
	RoleTypeName      string `json:"role_type" db:"role_type_name"`
	GrantsGlobalAdmin bool   `json:"grants_global_admin" db:"grants_global_admin"`
}

// WorkstreamGrant is one workstream_access row joined with its workstream and
// permission type. Grants on inactive workstreams are returned as-is; callers
// decide what to do with them.
type WorkstreamGrant struct {
	WorkstreamID       int64  `db:"workstream_id"`
	WorkstreamCode     string `db:"workstream_code"`
	WorkstreamName     string `db:"workstream_name"`
	IsWorkstreamActive bool   `db:"workstream_active"`
	PermissionTypeID   int64  `db:"permission_type_id"`
	PermissionTypeName string `db:"permission_type_name"`
	PermissionLevel    int    `db:"permission_level"`
}

// Reader is the read side of the identity store. Implementations must be safe
// for concurrent use.
type Reader interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetRolesForUser(ctx context.Context, userID int64) ([]Role, error)
	GetWorkstreamGrantsForUser(ctx context.Context, userID int64) ([]WorkstreamGrant, error)
}

// Writer holds the Global Admin mutations.
type Writer interface {
	// GrantWorkstreamAccess replaces any existing grant for the same
	// (user, workstream) pair.
	GrantWorkstreamAccess(ctx context.Context, userID, workstreamID, permissionTypeID int64, grantedBy *int64) error
	RevokeWorkstreamAccess(ctx context.Context, userID, workstreamID int64) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	SetWorkstreamActive(ctx context.Context, workstreamID int64, active bool) error
	AssignRole(ctx context.Context, userID, roleID int64) error
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
