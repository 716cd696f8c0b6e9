package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/auth"
	identityDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/identity"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedAdminPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data",
	Long:  `Seed role types, permission levels, workstreams and a Global Admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		hash, err := auth.HashPassword(seedAdminPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		if err := seed(cmd.Context(), gormDB, seedData{AdminEmail: "admin@propertyhub.local", AdminPasswordHash: hash}, clearData); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("seed completed")
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "password", "password for the seeded Global Admin")
}

type seedData struct {
	AdminEmail        string
	AdminPasswordHash string
}

var (
	seedRoleTypes = []identityDatamodel.RoleType{
		{Name: "Global Admin", GrantsGlobalAdmin: true},
		{Name: "Standard"},
	}
	// Stored levels are derived from these names.
	seedPermissionNames = []string{"Read", "Write", "Admin"}
	seedWorkstreams = []identityDatamodel.Workstream{
		{Code: "property-hub", Name: "Property Hub", IsActive: true},
		{Code: "property-hub-extras", Name: "Property Hub Extras", IsActive: true},
	}
)

// seed is idempotent: rows are matched on their unique name or code and
// left alone if present.
func seed(ctx context.Context, db *gorm.DB, data seedData, clear bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, model := range []interface{}{
				&identityDatamodel.WorkstreamAccess{},
				&identityDatamodel.UserRole{},
			} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("clear %T: %w", model, err)
				}
			}
		}

		roleTypes := make(map[string]int64)
		for _, rt := range seedRoleTypes {
			row := rt
			if err := tx.Where(identityDatamodel.RoleType{Name: rt.Name}).Attrs(row).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed role type %s: %w", rt.Name, err)
			}
			roleTypes[rt.Name] = row.ID
		}

		for _, name := range seedPermissionNames {
			level, err := access.ParsePermissionLevel(name)
			if err != nil {
				return fmt.Errorf("seed permission type %s: %w", name, err)
			}
			row := identityDatamodel.PermissionType{Name: name, Level: int(level)}
			if err := tx.Where(identityDatamodel.PermissionType{Name: name}).Attrs(row).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed permission type %s: %w", name, err)
			}
		}

		for _, ws := range seedWorkstreams {
			row := ws
			if err := tx.Where(identityDatamodel.Workstream{Code: ws.Code}).Attrs(row).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed workstream %s: %w", ws.Code, err)
			}
		}

		administrator := identityDatamodel.Role{Name: "Administrator", RoleTypeID: roleTypes["Global Admin"]}
		if err := tx.Where(identityDatamodel.Role{Name: administrator.Name}).Attrs(administrator).FirstOrCreate(&administrator).Error; err != nil {
			return fmt.Errorf("seed administrator role: %w", err)
		}
		staff := identityDatamodel.Role{Name: "Lettings Staff", RoleTypeID: roleTypes["Standard"]}
		if err := tx.Where(identityDatamodel.Role{Name: staff.Name}).Attrs(staff).FirstOrCreate(&staff).Error; err != nil {
			return fmt.Errorf("seed staff role: %w", err)
		}

		if data.AdminEmail == "" {
			return nil
		}
		admin := identityDatamodel.User{
			Email:        data.AdminEmail,
			FirstName:    "Global",
			LastName:     "Admin",
			PasswordHash: data.AdminPasswordHash,
			IsActive:     true,
		}
		if err := tx.Where(identityDatamodel.User{Email: data.AdminEmail}).Attrs(admin).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&identityDatamodel.UserRole{UserID: admin.ID, RoleID: administrator.ID}).Error
		if err != nil {
			return fmt.Errorf("assign administrator role: %w", err)
		}
		return nil
	})
}
