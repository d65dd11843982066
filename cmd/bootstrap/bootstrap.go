package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lakowalski/luxmedhunter/config"
	deliveryHttp "github.com/lakowalski/luxmedhunter/internal/delivery/http"
	"github.com/lakowalski/luxmedhunter/internal/delivery/http/handler"
	"github.com/lakowalski/luxmedhunter/internal/delivery/http/middleware"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	domainRepo "github.com/lakowalski/luxmedhunter/internal/domain/repository"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/cache"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/credstore"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/database"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/localdb"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/mail"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/metrics"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/portal"
	"github.com/lakowalski/luxmedhunter/internal/repository"
	"github.com/lakowalski/luxmedhunter/internal/service"
	"github.com/lakowalski/luxmedhunter/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies of the hunter and the setup CLI
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	Database     domainRepo.DatabaseRepository
	Credentials  domainRepo.CredentialRepository
	Portal       *portal.Client
	Hunting      usecase.HuntingUsecase
	Notification service.NotificationService
	Audit        service.AuditService
	Metrics      *metrics.Metrics
	Scheduler    *service.Scheduler
}

// Options override configuration values from command line flags
type Options struct {
	ConfigPath string
	StatusAddr string
}

// New loads configuration and wires every layer
func New(ctx context.Context, opts Options) (*App, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env: %+v", err)
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load config: %w", entity.ErrConfigurationMissing, err)
	}
	if opts.StatusAddr != "" {
		cfg.Status.Addr = opts.StatusAddr
	}

	app := &App{Config: cfg, Log: setupLogger(cfg.Log)}
	app.Log.Info("Configuration loaded successfully")

	if err := app.initialize(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// setupLogger configures a logrus logger from the log section
func setupLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func (app *App) initialize(ctx context.Context) error {
	cfg, log := app.Config, app.Log

	// Local state
	app.Database = localdb.NewStore(cfg.DatabaseFile, log)
	app.Credentials = credstore.NewStore(cfg.CredentialsFile, cfg.Credentials.MasterKey, log)

	// Portal sessions, shared through Redis when configured
	sessions := cache.NewMemorySessionCache()
	if cfg.SessionCache.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.SessionCache, log)
		if err != nil {
			return err
		}
		app.RedisClient = redisClient
		sessions = cache.NewRedisSessionCache(redisClient, log)
	}

	app.Portal = portal.NewClient(portal.Config{
		BaseURL:           cfg.Portal.BaseURL,
		Timeout:           cfg.Portal.Timeout,
		RequestsPerSecond: cfg.Portal.RequestsPerSecond,
		Burst:             cfg.Portal.Burst,
		LanguageID:        cfg.Portal.LanguageID,
		AllowRescheduling: cfg.Portal.AllowRescheduling,
	}, log)

	app.Hunting = usecase.NewHuntingUsecase(log, app.Database, app.Credentials, sessions, app.Portal)

	// Notifications
	app.Notification = service.NewNoopNotificationService()
	if cfg.Notifications.Mail.Enable {
		sender, err := mail.NewSender(ctx, cfg.Notifications.Mail, log)
		if err != nil {
			return fmt.Errorf("failed to set up mail provider: %w", err)
		}
		app.Notification = service.NewNotificationService(
			sender,
			string(cfg.Notifications.Mail.Provider),
			cfg.Notifications.Mail.Recipients,
			log,
		)
		log.Infof("Mail notifications enabled via %s", cfg.Notifications.Mail.Provider)
	}

	// Audit trail
	app.Audit = service.NewNoopAuditService()
	if cfg.Audit.Enable {
		db, err := database.NewConnection(cfg.Audit, log)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		app.DB = db
		app.Audit = service.NewAuditService(db, log, repository.NewAuditLogRepository())
		log.Infof("Audit trail enabled (%s)", cfg.Audit.Driver)
	}

	app.Metrics = metrics.New()
	app.Scheduler = service.NewScheduler(app.Hunting, app.Credentials, app.Notification, app.Audit, app.Metrics, log)
	if app.RedisClient != nil {
		app.Scheduler.UseLock(service.NewRedisCycleLock(app.RedisClient, log))
	}

	if cfg.Status.Addr != "" {
		app.Server = app.initializeServer()
	}

	return nil
}

// initializeServer creates the read-only status server
func (app *App) initializeServer() *http.Server {
	var auditLogHandler *handler.AuditLogHandler
	if app.DB != nil {
		auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, app.Log, repository.NewAuditLogRepository())
		auditLogHandler = handler.NewAuditLogHandler(auditLogUsecase)
	}

	router := deliveryHttp.NewRouter(
		handler.NewBookingHandler(app.Hunting),
		handler.NewSearchCriteriaHandler(app.Hunting),
		auditLogHandler,
		app.Metrics.Handler(),
		middleware.NewLoggingMiddleware(app.Log),
		middleware.NewCORSMiddleware(),
	)

	return &http.Server{
		Addr:              app.Config.Status.Addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Hunt runs the scheduler until it returns, serving the status endpoint
// alongside when configured. delay of zero means a single pass.
func (app *App) Hunt(ctx context.Context, delay time.Duration) error {
	if app.Server != nil {
		go func() {
			app.Log.Infof("Status endpoint listening on %s", app.Server.Addr)
			if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Log.Errorf("Status endpoint stopped: %+v", err)
			}
		}()
		defer app.shutdownServer()
	}

	return app.Scheduler.Run(ctx, delay)
}

func (app *App) shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Status endpoint forced to shutdown: %+v", err)
	}
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
