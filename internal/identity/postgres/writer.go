package postgres

import (
	"context"
	"fmt"

	identityDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/identity"
	"github.com/frahmantamala/property-hub/internal/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Writer applies Global Admin mutations through gorm.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func exists(tx *gorm.DB, model interface{}, id int64, notFound error) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}

func (w *Writer) GrantWorkstreamAccess(ctx context.Context, userID, workstreamID, permissionTypeID int64, grantedBy *int64) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &identityDatamodel.User{}, userID, identity.ErrUserNotFound); err != nil {
			return err
		}
		if err := exists(tx, &identityDatamodel.Workstream{}, workstreamID, identity.ErrWorkstreamNotFound); err != nil {
			return err
		}
		if err := exists(tx, &identityDatamodel.PermissionType{}, permissionTypeID, identity.ErrPermissionTypeNotFound); err != nil {
			return err
		}

		grant := &identityDatamodel.WorkstreamAccess{
			UserID:           userID,
			WorkstreamID:     workstreamID,
			PermissionTypeID: permissionTypeID,
			GrantedBy:        grantedBy,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "workstream_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"permission_type_id", "granted_by", "updated_at"}),
		}).Create(grant).Error
		if err != nil {
			return fmt.Errorf("upsert workstream grant: %w", err)
		}
		return nil
	})
}

func (w *Writer) RevokeWorkstreamAccess(ctx context.Context, userID, workstreamID int64) error {
	res := w.db.WithContext(ctx).
		Where("user_id = ? AND workstream_id = ?", userID, workstreamID).
		Delete(&identityDatamodel.WorkstreamAccess{})
	if res.Error != nil {
		return fmt.Errorf("revoke workstream grant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrGrantNotFound
	}
	return nil
}

func (w *Writer) SetUserActive(ctx context.Context, userID int64, active bool) error {
	res := w.db.WithContext(ctx).
		Model(&identityDatamodel.User{}).
		Where("id = ?", userID).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("set user active: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// SetWorkstreamActive flips the flag only. Grant rows are kept so that
// reactivation restores them unchanged.
func (w *Writer) SetWorkstreamActive(ctx context.Context, workstreamID int64, active bool) error {
	res := w.db.WithContext(ctx).
		Model(&identityDatamodel.Workstream{}).
		Where("id = ?", workstreamID).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("set workstream active: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrWorkstreamNotFound
	}
	return nil
}

func (w *Writer) AssignRole(ctx context.Context, userID, roleID int64) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &identityDatamodel.User{}, userID, identity.ErrUserNotFound); err != nil {
			return err
		}
		if err := exists(tx, &identityDatamodel.Role{}, roleID, identity.ErrRoleNotFound); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&identityDatamodel.UserRole{UserID: userID, RoleID: roleID}).Error
		if err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
		return nil
	})
}
