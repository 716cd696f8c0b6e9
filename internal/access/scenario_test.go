package access_test

import (
	"context"
	"net/http"

	"github.com/frahmantamala/property-hub/internal/access"
	identityDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/identity"
	identityPostgres "github.com/frahmantamala/property-hub/internal/identity/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Resolving and gating against the identity store", func() {
	var (
		ctx      context.Context
		writer   *identityPostgres.Writer
		resolver *access.Resolver
		gate     *access.Gate

		u                   identityDatamodel.User
		propertyHub, extras identityDatamodel.Workstream
		write               identityDatamodel.PermissionType
	)

	BeforeEach(func() {
		ctx = context.Background()

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&identityDatamodel.User{},
			&identityDatamodel.RoleType{},
			&identityDatamodel.Role{},
			&identityDatamodel.UserRole{},
			&identityDatamodel.Workstream{},
			&identityDatamodel.PermissionType{},
			&identityDatamodel.WorkstreamAccess{},
		)).To(Succeed())

		u = identityDatamodel.User{Email: "u@example.com", FirstName: "U", PasswordHash: "x", IsActive: true}
		propertyHub = identityDatamodel.Workstream{Code: "property-hub", Name: "Property Hub", IsActive: true}
		extras = identityDatamodel.Workstream{Code: "property-hub-extras", Name: "Property Hub Extras", IsActive: true}
		write = identityDatamodel.PermissionType{Name: "Write", Level: 20}
		Expect(db.Create(&u).Error).To(Succeed())
		Expect(db.Create(&propertyHub).Error).To(Succeed())
		Expect(db.Create(&extras).Error).To(Succeed())
		Expect(db.Create(&write).Error).To(Succeed())

		writer = identityPostgres.NewWriter(db)
		resolver = access.NewResolver(identityPostgres.NewReader(sqlx.NewDb(sqlDB, "sqlite3")), quietLogger())

		table, err := access.NewWorkstreamTable(map[string]string{
			"properties": "property-hub",
			"tenants":    "property-hub",
		})
		Expect(err).NotTo(HaveOccurred())
		gate = access.NewGate(table, quietLogger())

		Expect(writer.GrantWorkstreamAccess(ctx, u.ID, propertyHub.ID, write.ID, nil)).To(Succeed())
	})

	It("should allow properties and tenants with Write and deny after the user is deactivated", func() {
		profile, err := resolver.Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())

		d := gate.Authorize(target(access.CategoryProperties), profile)
		Expect(d.Allowed()).To(BeTrue())
		Expect(d.Permission).To(Equal(access.PermissionWrite))
		Expect(gate.Authorize(target(access.CategoryTenants), profile).Allowed()).To(BeTrue())

		Expect(writer.SetUserActive(ctx, u.ID, false)).To(Succeed())
		profile, err = resolver.Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())

		d = gate.Authorize(target(access.CategoryProperties), profile)
		Expect(d.Allowed()).To(BeFalse())
		Expect(d.Status).To(Equal(http.StatusForbidden))
	})

	It("should hide and restore a grant across workstream deactivation", func() {
		Expect(writer.SetWorkstreamActive(ctx, propertyHub.ID, false)).To(Succeed())
		profile, err := resolver.Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.Grants).To(BeEmpty())
		Expect(gate.Authorize(target(access.CategoryProperties), profile).Status).To(Equal(http.StatusForbidden))

		Expect(writer.SetWorkstreamActive(ctx, propertyHub.ID, true)).To(Succeed())
		profile, err = resolver.Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.Grants).To(HaveLen(1))
		Expect(profile.Grants[0].WorkstreamCode).To(Equal("property-hub"))
		Expect(profile.Grants[0].Permission).To(Equal(access.PermissionWrite))
	})

	It("should deny a grant on a workstream that only shares a name prefix", func() {
		Expect(writer.RevokeWorkstreamAccess(ctx, u.ID, propertyHub.ID)).To(Succeed())
		Expect(writer.GrantWorkstreamAccess(ctx, u.ID, extras.ID, write.ID, nil)).To(Succeed())

		profile, err := resolver.Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		d := gate.Authorize(target(access.CategoryProperties), profile)
		Expect(d.Allowed()).To(BeFalse())
		Expect(d.Reason).To(Equal(access.ReasonWorkstreamAccessRequired))
	})

	It("should fail unknown subjects", func() {
		_, err := resolver.Resolve(ctx, u.ID+100)
		Expect(err).To(MatchError(access.ErrUnknownSubject))
	})
})
