package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/company"
	companyPostgres "github.com/profaxno/admin-management/internal/company/postgres"
	"github.com/profaxno/admin-management/internal/core/events"
	"github.com/profaxno/admin-management/internal/documenttype"
	documentTypePostgres "github.com/profaxno/admin-management/internal/documenttype/postgres"
	"github.com/profaxno/admin-management/internal/permission"
	permissionPostgres "github.com/profaxno/admin-management/internal/permission/postgres"
	"github.com/profaxno/admin-management/internal/productunit"
	productUnitPostgres "github.com/profaxno/admin-management/internal/productunit/postgres"
	"github.com/profaxno/admin-management/internal/replication"
	"github.com/profaxno/admin-management/internal/replication/awssink"
	"github.com/profaxno/admin-management/internal/replication/redissink"
	"github.com/profaxno/admin-management/internal/role"
	rolePostgres "github.com/profaxno/admin-management/internal/role/postgres"
	"github.com/profaxno/admin-management/internal/transport"
	"github.com/profaxno/admin-management/internal/transport/rest"
	"github.com/profaxno/admin-management/internal/transport/swagger"
	"github.com/profaxno/admin-management/internal/user"
	userPostgres "github.com/profaxno/admin-management/internal/user/postgres"
	"github.com/profaxno/admin-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	Config              *internal.Config
	DB                  *sqlx.DB
	GormDB              *gorm.DB
	Router              *chi.Mux
	Logger              *slog.Logger
	Coordinator         *replication.Coordinator
	CompanyService      *company.Service
	PermissionService   *permission.Service
	RoleService         *role.Service
	UserService         *user.Service
	ProductUnitService  *productunit.Service
	DocumentTypeService *documenttype.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	baseHandler := transport.NewBaseHandler(deps.Logger)

	companyHandler := company.NewHandler(baseHandler, deps.CompanyService)
	permissionHandler := permission.NewHandler(baseHandler, deps.PermissionService)
	roleHandler := role.NewHandler(baseHandler, deps.RoleService)
	userHandler := user.NewHandler(baseHandler, deps.UserService)
	productUnitHandler := productunit.NewHandler(baseHandler, deps.ProductUnitService)
	documentTypeHandler := documenttype.NewHandler(baseHandler, deps.DocumentTypeService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, companyHandler, permissionHandler, roleHandler, userHandler, productUnitHandler, documentTypeHandler, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	// a broken spec should fail startup, not surface as a blank swagger page
	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	sink, err := newSink(context.Background(), config.Replication)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize replication sink: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	coordinator := replication.NewCoordinator(sink, eventBus, config.Replication.Source, lg)

	deps := &Dependencies{
		Config:      config,
		Logger:      lg,
		DB:          db,
		GormDB:      gormDB,
		Router:      chi.NewRouter(),
		Coordinator: coordinator,
	}
	buildServices(deps, gormDB, coordinator, config.Pagination.DefaultLimit, lg)

	return deps, nil
}

func buildServices(deps *Dependencies, gormDB *gorm.DB, coordinator *replication.Coordinator, defaultLimit int, lg *slog.Logger) {
	companyRepo := companyPostgres.NewCompanyRepository(gormDB)
	permissionRepo := permissionPostgres.NewPermissionRepository(gormDB)
	roleRepo := rolePostgres.NewRoleRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	productUnitRepo := productUnitPostgres.NewProductUnitRepository(gormDB)
	documentTypeRepo := documentTypePostgres.NewDocumentTypeRepository(gormDB)

	deps.CompanyService = company.NewService(companyRepo, coordinator, defaultLimit, lg)
	deps.PermissionService = permission.NewService(permissionRepo, defaultLimit, lg)
	deps.RoleService = role.NewService(roleRepo, deps.CompanyService, rolePostgres.NewPermissionReconciler(gormDB, permissionRepo), defaultLimit, lg)
	deps.UserService = user.NewService(userRepo, deps.CompanyService, userPostgres.NewRoleReconciler(gormDB, roleRepo), coordinator, defaultLimit, lg)
	deps.ProductUnitService = productunit.NewService(productUnitRepo, coordinator, defaultLimit, lg)
	deps.DocumentTypeService = documenttype.NewService(documentTypeRepo, coordinator, defaultLimit, lg)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
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

// initGorm wraps the already open pgx connection so the ORM and the health
// checks share a single pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}

func newSink(ctx context.Context, cfg internal.ReplicationConfig) (replication.Sink, error) {
	switch cfg.Provider {
	case "aws":
		return awssink.New(ctx, cfg.AWS)
	case "redis":
		return redissink.New(ctx, cfg.Redis)
	case "none":
		return replication.NopSink{}, nil
	default:
		return nil, fmt.Errorf("unknown replication provider %q", cfg.Provider)
	}
}
