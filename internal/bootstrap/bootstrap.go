package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/emre/assigntrack/internal/app/controllers"
	appMigrations "github.com/emre/assigntrack/internal/app/migrations"
	appRepos "github.com/emre/assigntrack/internal/app/repositories"
	appRoutes "github.com/emre/assigntrack/internal/app/routes"
	appServices "github.com/emre/assigntrack/internal/app/services"
	"github.com/emre/assigntrack/internal/config"
	"github.com/emre/assigntrack/internal/db"
	appMiddleware "github.com/emre/assigntrack/internal/middleware"
	pkgAuth "github.com/emre/assigntrack/internal/pkg/auth"
	"github.com/emre/assigntrack/internal/pkg/email"
	"github.com/emre/assigntrack/internal/pkg/filestorage"
	"github.com/emre/assigntrack/internal/pkg/helpers"
	"github.com/emre/assigntrack/internal/pkg/logger"
	"github.com/emre/assigntrack/internal/pkg/session"
	"github.com/emre/assigntrack/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          *appServices.AuthService
	AssignmentService    *appServices.AssignmentService
	SubmissionService    *appServices.SubmissionService
	UserService          *appServices.UserService
	RoleReconciler       *appServices.RoleReconciler
	AuthController       *appControllers.AuthController
	AssignmentController *appControllers.AssignmentController
	SubmissionController *appControllers.SubmissionController
	UserController       *appControllers.UserController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Notifier             *session.Notifier
	FileStorage          *filestorage.LocalStorage
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  strings.ToLower(cfg.Logging.Level),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers, and
// wires the session notifier to the role reconciler.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// Sweep out tokens that can never authenticate again; a failed sweep is
	// only a warning, the table just stays larger until the next start.
	if _, err := deps.Repos.TokenRepository.CleanupExpiredTokens(context.Background()); err != nil {
		lgr.Warn().Err(err).Msg("Refresh token cleanup failed, continuing startup")
	}

	var err error
	fileStorageBaseURL := cfg.Server.PublicURL + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		BaseURL:   cfg.Server.PublicURL,
	}, lgr)

	// Session events flow from the auth service to the reconciler, which
	// persists roles parked at signup once a session exists.
	deps.Notifier = session.NewNotifier(64)
	pendingRoles := appServices.NewPendingRoleCache()
	deps.RoleReconciler = appServices.NewRoleReconciler(deps.Repos.RoleRepository, pendingRoles, lgr)
	deps.Notifier.Subscribe(deps.RoleReconciler.HandleEvent)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.RoleRepository,
		deps.Repos.TokenRepository,
		deps.Repos.VerificationTokenRepository,
		deps.JWTService,
		emailService,
		deps.Notifier,
		pendingRoles,
		cfg.Auth.RequireEmailVerification,
		helpers.ParseDuration(cfg.Auth.VerificationTokenTTL, 48*time.Hour),
		lgr,
	)

	deps.AssignmentService = appServices.NewAssignmentService(deps.Repos.AssignmentRepository, lgr)
	deps.SubmissionService = appServices.NewSubmissionService(
		deps.Repos.SubmissionRepository,
		deps.Repos.AssignmentRepository,
		deps.Repos.UserRepository,
		deps.FileStorage,
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.RoleRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.AssignmentController = appControllers.NewAssignmentController(deps.AssignmentService, lgr)
	deps.SubmissionController = appControllers.NewSubmissionController(deps.SubmissionService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AssignmentController,
		deps.SubmissionController,
		deps.UserController,
		deps.AuthMiddleware,
		cfg.Server.StoragePath,
	)

	return router
}
