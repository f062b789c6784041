package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"

	_ "licenseportal/docs"
	"licenseportal/internal/analytics"
	"licenseportal/internal/caching"
	"licenseportal/internal/config"
	"licenseportal/internal/handlers"
	"licenseportal/internal/jobs"
	"licenseportal/internal/jobs/background"
	"licenseportal/internal/logging"
	"licenseportal/internal/middleware"
	"licenseportal/internal/repositories"
	"licenseportal/internal/services"
	"licenseportal/pkg/database"
)

// @title License Portal API
// @version 1.0
// @description License lifecycle and renewal engine for a multi-tenant licensing portal.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, log)
	case "migrate":
		err = database.Migrate(cfg.Database.URL, log)
	case "provision":
		err = provision(cfg, log, os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q (want serve, migrate or provision)", cmd)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("exiting")
	}
}

func serve(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(cfg.Database.URL, log); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	clock := clockwork.NewRealClock()
	store := repositories.NewStore(pool, clock)

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	objectStore, err := services.NewMinioObjectStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	if err := objectStore.EnsureBucketExists(ctx, cfg.MinIO.Bucket); err != nil {
		// Uploads fail until storage is reachable; everything else keeps working.
		log.Warn().Err(err).Str("bucket", cfg.MinIO.Bucket).Msg("document bucket unavailable")
	}

	var transport services.NotificationTransport
	switch cfg.Notifications.Transport {
	case "webhook":
		transport = services.NewWebhookTransport(cfg.Notifications.WebhookURL, cfg.Notifications.Timeout)
	default:
		transport = services.NewLogTransport(log)
	}

	applicationSvc := services.NewApplicationService(store, cacheSvc, clock, log)
	licenseSvc := services.NewLicenseService(store, cacheSvc, clock, log)
	notificationSvc := services.NewNotificationService(store, transport, clock, log)
	documentSvc := services.NewDocumentService(objectStore, cfg.MinIO.Bucket, store)
	agencySvc := services.NewAgencyService(store)
	userSvc := services.NewUserService(store)
	dashboardSvc := analytics.NewDashboardService(store, cacheSvc, clock, log)

	// Notification dispatch queue
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	dispatcher := jobs.NewAsynqDispatcher(asynqClient, log)

	worker := jobs.NewDispatchWorker(redisOpt, cfg.Scheduler.WorkerConcurrency, jobs.NewDispatchHandler(notificationSvc, log), log)
	if err := worker.Start(); err != nil {
		return fmt.Errorf("start dispatch worker: %w", err)
	}
	defer worker.Shutdown()

	scanner := jobs.NewRenewalScanner(store, notificationSvc, dispatcher, clock, log)
	scheduler, err := background.NewJobScheduler(scanner, jobs.NewRedisRunLocker(redisClient), clock, cfg.Scheduler, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if cfg.Scheduler.Enabled {
		scheduler.Start()
	} else {
		log.Info().Msg("scheduled scans disabled; manual runs only")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown")
		}
	}()

	// Bearer tokens are verified against the JWKS when configured, else an HMAC secret.
	var keyFunc jwt.Keyfunc
	if cfg.Auth.JWKSURL != "" {
		jwks, err := middleware.NewJWKS(cfg.Auth.JWKSURL, log)
		if err != nil {
			return err
		}
		defer jwks.EndBackground()
		keyFunc = jwks.Keyfunc
	}
	jwtSecret := cfg.Auth.JWTSecret
	if keyFunc == nil && jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn().Msg("AUTH_JWT_SECRET not set; using a generated secret, tokens will not survive a restart")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware(cfg.Server.Version)
	e.Use(versionMiddleware.APIVersionResolver())

	routes := &handlers.Routes{
		Health: handlers.NewHealthHandlers(cfg.Server.Version,
			map[string]handlers.Pinger{"database": pool},
			map[string]handlers.Pinger{"redis": cacheSvc},
		),
		Applications:  handlers.NewApplicationHandlers(applicationSvc, documentSvc),
		Licenses:      handlers.NewLicenseHandlers(licenseSvc, clock),
		Notifications: handlers.NewNotificationHandlers(notificationSvc),
		Dashboard:     handlers.NewDashboardHandlers(dashboardSvc),
		Jobs:          handlers.NewJobHandlers(scheduler),
		Directory:     handlers.NewDirectoryHandlers(agencySvc, userSvc),
		Version:       versionMiddleware,
		Swagger:       true,
	}
	routes.Register(e,
		echojwt.WithConfig(middleware.JWTConfig(jwtSecret, keyFunc)),
		middleware.ResolveTenant(store.Tenants),
	)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("version", cfg.Server.Version).Msg("license portal starting")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// provision creates a tenant with its standard agencies and a first administrator.
func provision(cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	name := fs.String("name", "", "tenant display name")
	domain := fs.String("domain", "", "tenant domain, e.g. licensing.example.gov")
	adminEmail := fs.String("admin-email", "", "first administrator's email")
	adminPassword := fs.String("admin-password", "", "first administrator's password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	if err := database.Migrate(cfg.Database.URL, log); err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := repositories.NewStore(pool, clockwork.NewRealClock())
	tenant, err := services.NewTenantService(store, log).Provision(ctx, &services.ProvisionTenantRequest{
		Name:         *name,
		Domain:       *domain,
		SeedAgencies: true,
	})
	if err != nil {
		return fmt.Errorf("provision tenant: %w", err)
	}

	admin, err := services.NewUserService(store).Register(ctx, tenant.ID, &services.RegisterUserRequest{
		Email:     *adminEmail,
		Password:  *adminPassword,
		FirstName: "Portal",
		LastName:  "Administrator",
		Role:      "Administrator",
	})
	if err != nil {
		return fmt.Errorf("create administrator for tenant %s: %w", tenant.ID, err)
	}

	log.Info().Str("tenant_id", tenant.ID.String()).Str("domain", tenant.Domain).
		Str("admin_id", admin.ID.String()).Msg("tenant provisioned")
	return nil
}
