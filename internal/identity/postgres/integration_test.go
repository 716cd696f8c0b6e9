//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/property-hub/internal/access"
	identityDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/identity"
	identityPostgres "github.com/frahmantamala/property-hub/internal/identity/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Identity store on PostgreSQL", Ordered, func() {
	var (
		ctx       context.Context
		container *tcpostgres.PostgresContainer
		sqlDB     *sql.DB
		gormDB    *gorm.DB
		writer    *identityPostgres.Writer
		reader    *identityPostgres.Reader
	)

	BeforeAll(func() {
		if testing.Short() {
			Skip("skipping integration test")
		}
		ctx = context.Background()

		var err error
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("property_hub_test"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = container.Terminate(context.Background())
		})

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err = sql.Open("pgx", connStr)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sqlDB.Close)

		Expect(goose.SetDialect("postgres")).To(Succeed())
		goose.SetTableName("schema_migrations")
		Expect(goose.UpContext(ctx, sqlDB, "../../../db/migrations")).To(Succeed())

		gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		writer = identityPostgres.NewWriter(gormDB)
		reader = identityPostgres.NewReader(sqlx.NewDb(sqlDB, "pgx"))
	})

	It("should keep one grant per user and workstream and resolve it", func() {
		u := identityDatamodel.User{Email: "Staff@Example.com", FirstName: "Sam", PasswordHash: "x", IsActive: true}
		ws := identityDatamodel.Workstream{Code: "property-hub", Name: "Property Hub", IsActive: true}
		read := identityDatamodel.PermissionType{Name: "Read", Level: 10}
		write := identityDatamodel.PermissionType{Name: "Write", Level: 20}
		for _, row := range []interface{}{&u, &ws, &read, &write} {
			Expect(gormDB.Create(row).Error).To(Succeed())
		}

		Expect(writer.GrantWorkstreamAccess(ctx, u.ID, ws.ID, read.ID, nil)).To(Succeed())
		Expect(writer.GrantWorkstreamAccess(ctx, u.ID, ws.ID, write.ID, nil)).To(Succeed())

		var rows int64
		Expect(gormDB.Model(&identityDatamodel.WorkstreamAccess{}).Where("user_id = ?", u.ID).Count(&rows).Error).To(Succeed())
		Expect(rows).To(Equal(int64(1)))

		found, err := reader.GetUserByEmail(ctx, "staff@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(u.ID))

		profile, err := access.NewResolver(reader, slog.New(slog.NewTextHandler(io.Discard, nil))).Resolve(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.Grants).To(HaveLen(1))
		Expect(profile.Grants[0].WorkstreamCode).To(Equal("property-hub"))
		Expect(profile.Grants[0].Permission).To(Equal(access.PermissionWrite))
	})

	It("should reject a duplicate grant written around the upsert", func() {
		var u identityDatamodel.User
		var ws identityDatamodel.Workstream
		var pt identityDatamodel.PermissionType
		Expect(gormDB.First(&u).Error).To(Succeed())
		Expect(gormDB.First(&ws).Error).To(Succeed())
		Expect(gormDB.First(&pt).Error).To(Succeed())

		err := gormDB.Create(&identityDatamodel.WorkstreamAccess{UserID: u.ID, WorkstreamID: ws.ID, PermissionTypeID: pt.ID}).Error
		Expect(err).To(HaveOccurred())
	})
})
