package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/admin"
	"github.com/frahmantamala/property-hub/internal/auth"
	"github.com/frahmantamala/property-hub/internal/core/events"
	identityPostgres "github.com/frahmantamala/property-hub/internal/identity/postgres"
	"github.com/frahmantamala/property-hub/internal/property"
	propertyPostgres "github.com/frahmantamala/property-hub/internal/property/postgres"
	"github.com/frahmantamala/property-hub/internal/transport"
	"github.com/frahmantamala/property-hub/internal/transport/rest"
	"github.com/frahmantamala/property-hub/internal/user"
	"github.com/frahmantamala/property-hub/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Bus    *events.EventBus
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:         cfg.Security.JWTSecret,
		Issuer:         cfg.Security.Issuer,
		Audience:       cfg.Security.Audience,
		AccessTokenTTL: cfg.Security.AccessTokenDuration,
		Leeway:         cfg.Security.Leeway,
	})
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	table, err := access.NewWorkstreamTable(cfg.Authorization.ResourceWorkstreams)
	if err != nil {
		return fmt.Errorf("workstream table: %w", err)
	}

	identityReader := identityPostgres.NewReader(deps.DB)
	identityWriter := identityPostgres.NewWriter(deps.GormDB)

	var resolver access.ProfileResolver = access.NewResolver(identityReader, lg)
	if cfg.Authorization.ProfileCacheTTL > 0 {
		cache := access.NewProfileCache(cfg.Authorization.ProfileCacheTTL, time.Now)
		access.RegisterInvalidation(deps.Bus, cache, lg)
		resolver = access.NewCachedResolver(resolver, cache)
	}

	base := transport.NewBaseHandler(lg)
	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		APIPrefix:       cfg.Authorization.APIPrefix,
		RequestTimeout:  cfg.Authorization.RequestTimeout,
		AllowedOrigins:  cfg.Server.Origins(),
		DB:              deps.DB,
		Verifier:        tokens,
		Resolver:        resolver,
		Gate:            access.NewGate(table, lg),
		AuthHandler:     auth.NewHandler(auth.NewService(identityReader, tokens, lg), lg),
		UserHandler:     user.NewHandler(base, user.NewService(identityReader)),
		PropertyHandler: property.NewHandler(base, property.NewService(propertyPostgres.NewPropertyRepository(deps.GormDB), lg)),
		AdminHandler:    admin.NewHandler(base, admin.NewService(identityWriter, deps.Bus, lg)),
		Logger:          lg,
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Env, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Bus:    events.NewEventBus(lg),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
