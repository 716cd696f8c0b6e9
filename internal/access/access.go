// Package access resolves a subject into its effective workstream
// capabilities and decides whether a request may reach a resource.
package access

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/frahmantamala/property-hub/internal/identity"
)

var (
	// ErrUnknownSubject means the subject id does not resolve to a user.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrStoreUnavailable wraps any identity store failure, including
	// context cancellation. Callers must treat it as a denial.
	ErrStoreUnavailable = errors.New("identity store unavailable")
)

// IdentityStore is the read side of the identity store the resolver needs.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id int64) (*identity.User, error)
	GetRolesForUser(ctx context.Context, userID int64) ([]identity.Role, error)
	GetWorkstreamGrantsForUser(ctx context.Context, userID int64) ([]identity.WorkstreamGrant, error)
}

// ProfileResolver is satisfied by Resolver and CachedResolver.
type ProfileResolver interface {
	Resolve(ctx context.Context, subjectID int64) (*Profile, error)
}

// PermissionLevel is an ordered privilege within a workstream.
type PermissionLevel int

const (
	PermissionNone  PermissionLevel = 0
	PermissionRead  PermissionLevel = 10
	PermissionWrite PermissionLevel = 20
	PermissionAdmin PermissionLevel = 30
)

// PermissionLevelFromStored decodes the level column of permission_types.
// Values outside the known set grant nothing.
func PermissionLevelFromStored(level int) PermissionLevel {
	switch PermissionLevel(level) {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return PermissionLevel(level)
	default:
		return PermissionNone
	}
}

// ParsePermissionLevel maps a permission type name (read, write, admin) to its level.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return PermissionRead, nil
	case "write":
		return PermissionWrite, nil
	case "admin":
		return PermissionAdmin, nil
	default:
		return PermissionNone, fmt.Errorf("unknown permission level %q", s)
	}
}

// String returns the lower-case level name, "none" for anything unknown.
func (p PermissionLevel) String() string {
	switch p {
	case PermissionRead:
		return "read"
	case PermissionWrite:
		return "write"
	case PermissionAdmin:
		return "admin"
	default:
		return "none"
	}
}

// MarshalText encodes the level by name in JSON responses.
func (p PermissionLevel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Allows reports whether p is at least required. PermissionNone allows nothing.
func (p PermissionLevel) Allows(required PermissionLevel) bool {
	if p == PermissionNone {
		return false
	}
	return p >= required
}

// Grant is one workstream a subject may use and the level held there.
type Grant struct {
	WorkstreamID   int64           `json:"workstream_id"`
	WorkstreamCode string          `json:"workstream_code"`
	WorkstreamName string          `json:"workstream_name"`
	Permission     PermissionLevel `json:"permission"`
	PermissionName string          `json:"permission_name"`
}

// Profile is the resolved view of one subject. It is never persisted.
type Profile struct {
	UserID        int64   `json:"user_id"`
	IsActive      bool    `json:"is_active"`
	IsGlobalAdmin bool    `json:"is_global_admin"`
	Grants        []Grant `json:"grants"`
}

// Authenticated reports whether the profile belongs to a real subject.
func (p *Profile) Authenticated() bool {
	return p != nil && p.UserID != 0
}

// GrantFor returns the grant on the workstream with the given code.
func (p *Profile) GrantFor(workstreamCode string) (Grant, bool) {
	if p == nil {
		return Grant{}, false
	}
	for _, g := range p.Grants {
		if g.WorkstreamCode == workstreamCode {
			return g, true
		}
	}
	return Grant{}, false
}

// Clone returns a copy whose grant slice is not shared with p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Grants = slices.Clone(p.Grants)
	if out.Grants == nil {
		out.Grants = []Grant{}
	}
	return &out
}
