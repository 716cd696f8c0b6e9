package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/property-hub/internal/identity"
	"github.com/jmoiron/sqlx"
)

// Reader serves the authorization hot path with plain SQL over sqlx. It never
// writes.
type Reader struct {
	db *sqlx.DB
}

func NewReader(db *sqlx.DB) *Reader {
	return &Reader{db: db}
}

type userRow struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *identity.User {
	return &identity.User{
		ID:           r.ID,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, email, first_name, last_name, password_hash, is_active, created_at, updated_at`

func (r *Reader) GetUserByID(ctx context.Context, id int64) (*identity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Reader) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = ?`)
	if err := r.db.GetContext(ctx, &row, query, identity.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Reader) GetRolesForUser(ctx context.Context, userID int64) ([]identity.Role, error) {
	query := r.db.Rebind(`
		SELECT r.id, r.name, r.role_type_id, rt.name AS role_type_name, rt.grants_global_admin
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		JOIN role_types rt ON rt.id = r.role_type_id
		WHERE ur.user_id = ?
		ORDER BY r.id`)

	roles := []identity.Role{}
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("get roles for user: %w", err)
	}
	return roles, nil
}

func (r *Reader) GetWorkstreamGrantsForUser(ctx context.Context, userID int64) ([]identity.WorkstreamGrant, error) {
	query := r.db.Rebind(`
		SELECT w.id AS workstream_id,
		       w.code AS workstream_code,
		       w.name AS workstream_name,
		       w.is_active AS workstream_active,
		       pt.id AS permission_type_id,
		       pt.name AS permission_type_name,
		       pt.level AS permission_level
		FROM workstream_access wa
		JOIN workstreams w ON w.id = wa.workstream_id
		JOIN permission_types pt ON pt.id = wa.permission_type_id
		WHERE wa.user_id = ?
		ORDER BY w.id, pt.level DESC`)

	grants := []identity.WorkstreamGrant{}
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("get workstream grants for user: %w", err)
	}
	return grants, nil
}
