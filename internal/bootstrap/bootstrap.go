package bootstrap

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/campusrecords/internal/app/auth"
	appControllers "github.com/yigit/campusrecords/internal/app/controllers"
	appMigrations "github.com/yigit/campusrecords/internal/app/migrations"
	appRepos "github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/app/repositories/memory"
	appRoutes "github.com/yigit/campusrecords/internal/app/routes"
	appServices "github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/config"
	"github.com/yigit/campusrecords/internal/db"
	appMiddleware "github.com/yigit/campusrecords/internal/middleware"
	pkgAuth "github.com/yigit/campusrecords/internal/pkg/auth"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
	"github.com/yigit/campusrecords/internal/pkg/helpers"
	"github.com/yigit/campusrecords/internal/pkg/logger"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// DefaultConfigPath is read when no other path is given.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store     appRepos.Store
	Storage   filestorage.BlobStorage
	Publisher events.Publisher

	JWTService   *pkgAuth.JWTService
	Hasher       *pkgAuth.PasswordHasher
	AuthzService *appAuth.AuthorizationService

	AuthService       appServices.AuthService
	StudentService    appServices.StudentService
	FacultyService    appServices.FacultyService
	SubjectService    appServices.SubjectService
	EnrollmentService appServices.EnrollmentService
	ProfileService    appServices.ProfileService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "campusrecords",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenPostgres connects to the configured database.
func OpenPostgres(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// Migrate applies the SQL migrations from the configured directory.
func Migrate(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	dir := cfg.Database.MigrationsDir
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Str("dir", dir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx, os.DirFS(dir)); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// OpenStore returns the configured store with its schema in place. The
// returned close func releases the connection pool.
func OpenStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		lgr.Warn().Msg("Using the in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}

	database, err := OpenPostgres(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, nil, err
	}
	return appRepos.NewPostgresStore(database), database.Close, nil
}

// NewBlobStorage returns the configured picture storage.
func NewBlobStorage(cfg *config.Config) (filestorage.BlobStorage, error) {
	if cfg.Storage.Driver == "cloudinary" {
		return filestorage.NewCloudinaryStorage(cfg.Storage.CloudinaryURL)
	}
	storage, err := filestorage.NewLocalStorage(cfg.Storage.Path, cfg.PublicBaseURL()+"/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return storage, nil
}

// NewPublisher returns the configured domain event publisher.
func NewPublisher(cfg *config.Config, lgr zerolog.Logger) events.Publisher {
	if cfg.Events.Driver == "kafka" {
		lgr.Info().Strs("brokers", cfg.KafkaBrokers()).Str("topic", cfg.Events.Topic).Msg("Publishing events to kafka")
		return events.NewKafkaPublisher(cfg.KafkaBrokers(), cfg.Events.Topic,
			helpers.ParseDuration(cfg.Events.WriteTimeout, 10*time.Second))
	}
	return events.NewLogPublisher(lgr)
}

// NewJWTService builds the token service from configuration.
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services, controllers and middleware on top of store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, storage filestorage.BlobStorage, publisher events.Publisher, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Store:     store,
		Storage:   storage,
		Publisher: publisher,
		Logger:    lgr,
	}

	deps.JWTService = NewJWTService(cfg)
	deps.Hasher = pkgAuth.NewPasswordHasher(cfg.Security.BcryptCost)
	deps.AuthzService = appAuth.NewAuthorizationService(store)

	deps.AuthService = appServices.NewAuthService(store, deps.Hasher, deps.JWTService, deps.AuthzService, publisher, lgr)
	deps.StudentService = appServices.NewStudentService(store, deps.Hasher, storage, publisher, lgr)
	deps.FacultyService = appServices.NewFacultyService(store, storage, lgr)
	deps.SubjectService = appServices.NewSubjectService(store, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(store, storage, publisher, lgr)
	deps.ProfileService = appServices.NewProfileService(store, storage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, storage, lgr),
		Profile:    appControllers.NewProfileController(deps.ProfileService, storage, lgr),
		Student:    appControllers.NewStudentController(deps.StudentService, deps.EnrollmentService, deps.AuthzService, storage, lgr),
		Faculty:    appControllers.NewFacultyController(deps.FacultyService, deps.EnrollmentService, deps.AuthzService, lgr),
		Subject:    appControllers.NewSubjectController(deps.SubjectService, lgr),
		Department: appControllers.NewDepartmentController(store),
	}
	return deps
}

// RegisterValidators installs the domain binding rules on gin's validator and
// makes it report JSON field names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return validation.RegisterCustomValidators(v)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	if cfg.Storage.Driver == "local" {
		router.Static("/uploads", cfg.Storage.Path)
		lgr.Info().Str("path", cfg.Storage.Path).Msg("Static file serving configured for uploads directory")
	}
	return router
}
