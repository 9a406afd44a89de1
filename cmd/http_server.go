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

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/approval"
	"github.com/danekja/ymanager/internal/auth"
	"github.com/danekja/ymanager/internal/authz"
	"github.com/danekja/ymanager/internal/calendar"
	calendarpostgres "github.com/danekja/ymanager/internal/calendar/postgres"
	"github.com/danekja/ymanager/internal/fileio"
	"github.com/danekja/ymanager/internal/policy"
	policypostgres "github.com/danekja/ymanager/internal/policy/postgres"
	"github.com/danekja/ymanager/internal/transport/rest"
	"github.com/danekja/ymanager/internal/user"
	userpostgres "github.com/danekja/ymanager/internal/user/postgres"
	"github.com/danekja/ymanager/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
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
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := openGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open orm layer: %w", err)
	}

	userRepo := userpostgres.NewUserRepository(gdb)
	policyRepo := policypostgres.NewPolicyRepository(gdb)
	entryRepo := calendarpostgres.NewEntryRepository(gdb)

	guard := authz.NewGuard()
	ledger := calendar.NewLedger(config.Workday.LengthHours)

	policyService := policy.NewService(policyRepo, userRepo, guard, log)
	calendarService := calendar.NewService(entryRepo, userRepo, policyService, guard, ledger, config.Workday.Location(), log)
	userService := user.NewService(userRepo, policyService, calendarService, guard, log)
	approvalService := approval.NewService(entryRepo, userRepo, policyService, guard, ledger, log)
	fileioService := fileio.NewService(userRepo, policyRepo, calendarService, log)

	pubKey, err := config.OIDC.GetPublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load OIDC public key: %w", err)
	}
	verifier := auth.NewJWTVerifier(config.OIDC.Issuer, pubKey)
	authMiddleware := auth.NewMiddleware(verifier, userService, log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authMiddleware, rest.Handlers{
		User:     user.NewHandler(userService),
		Calendar: calendar.NewHandler(calendarService),
		Approval: approval.NewHandler(approvalService),
		Policy:   policy.NewHandler(policyService),
		FileIO:   fileio.NewHandler(fileioService),
	}, config.Server.AllowedOrigins, config.Server.RequestTimeout, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm layers the ORM over the already-open pgx pool so both share one
// set of connections.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
