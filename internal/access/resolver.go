package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/frahmantamala/property-hub/internal/identity"
)

// Resolver builds a Profile from the identity store. It holds no mutable
// state and issues at most three reads per call.
type Resolver struct {
	store  IdentityStore
	logger *slog.Logger
}

func NewResolver(store IdentityStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, subjectID int64) (*Profile, error) {
	if subjectID <= 0 {
		return nil, ErrUnknownSubject
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	user, err := r.store.GetUserByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, r.storeFailure("load user", subjectID, err)
	}
	if user == nil {
		return nil, ErrUnknownSubject
	}

	profile := &Profile{
		UserID:   user.ID,
		IsActive: user.IsActive,
		Grants:   []Grant{},
	}
	// deactivation overrides stored roles and grants
	if !user.IsActive {
		return profile, nil
	}

	roles, err := r.store.GetRolesForUser(ctx, subjectID)
	if err != nil {
		return nil, r.storeFailure("load roles", subjectID, err)
	}
	for _, role := range roles {
		if role.GrantsGlobalAdmin {
			profile.IsGlobalAdmin = true
			break
		}
	}

	rows, err := r.store.GetWorkstreamGrantsForUser(ctx, subjectID)
	if err != nil {
		return nil, r.storeFailure("load grants", subjectID, err)
	}
	profile.Grants = effectiveGrants(rows)

	return profile, nil
}

func (r *Resolver) storeFailure(op string, subjectID int64, err error) error {
	r.logger.Error("identity store read failed",
		"op", op,
		"user_id", subjectID,
		"error", err)
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// effectiveGrants drops grants on inactive workstreams and, should more than
// one row exist for a workstream, keeps the highest permission level.
func effectiveGrants(rows []identity.WorkstreamGrant) []Grant {
	best := make(map[int64]Grant, len(rows))
	for _, row := range rows {
		if !row.IsWorkstreamActive {
			continue
		}
		level := PermissionLevelFromStored(row.PermissionLevel)
		if level == PermissionNone {
			continue
		}
		if cur, ok := best[row.WorkstreamID]; ok && cur.Permission >= level {
			continue
		}
		best[row.WorkstreamID] = Grant{
			WorkstreamID:   row.WorkstreamID,
			WorkstreamCode: row.WorkstreamCode,
			WorkstreamName: row.WorkstreamName,
			Permission:     level,
			PermissionName: row.PermissionTypeName,
		}
	}

	grants := make([]Grant, 0, len(best))
	for _, g := range best {
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].WorkstreamID < grants[j].WorkstreamID
	})
	return grants
}
