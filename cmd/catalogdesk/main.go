package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/catalogdesk/cmd/catalogdesk/cli"
	"github.com/odyssey-erp/catalogdesk/internal/announcements"
	"github.com/odyssey-erp/catalogdesk/internal/app"
	"github.com/odyssey-erp/catalogdesk/internal/appusers"
	"github.com/odyssey-erp/catalogdesk/internal/audit"
	audithttp "github.com/odyssey-erp/catalogdesk/internal/audit/http"
	"github.com/odyssey-erp/catalogdesk/internal/auth"
	"github.com/odyssey-erp/catalogdesk/internal/catalog/categories"
	"github.com/odyssey-erp/catalogdesk/internal/catalog/products"
	"github.com/odyssey-erp/catalogdesk/internal/dashboard"
	"github.com/odyssey-erp/catalogdesk/internal/inquiries"
	"github.com/odyssey-erp/catalogdesk/internal/observability"
	"github.com/odyssey-erp/catalogdesk/internal/platform/cache"
	"github.com/odyssey-erp/catalogdesk/internal/platform/db"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
	"github.com/odyssey-erp/catalogdesk/internal/users"
	"github.com/odyssey-erp/catalogdesk/jobs"
)

const maxDBConns = 10

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobsCommand(ctx, cfg, os.Args[2:]))
	}

	if cfg.MigrateOnBoot {
		if err := db.Migrate(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, maxDBConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionMetrics := session.NewMetrics(metrics.Registerer())

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authService := auth.NewService(auth.NewRepository(dbpool))
	registry := session.NewRegistry(session.RegistryConfig{
		NewStore:      session.RedisStoreFactory(redisClient, cfg.SessionTTL),
		Directory:     authService,
		Authenticator: authService,
		Logger:        logger,
		Metrics:       sessionMetrics,
		LogoutDelay:   cfg.SessionLogoutDelay,
	})
	go registry.Run(ctx, cfg.SessionSweepInterval)

	authHandler := auth.NewHandler(auth.HandlerConfig{
		Logger:    logger,
		Service:   authService,
		Registry:  registry,
		Sessions:  sessionManager,
		CSRF:      csrfManager,
		LoginPath: cfg.LoginPath,
		LoginRate: cfg.LoginRateLimit,
	})

	rbacMiddleware := rbac.Middleware{Logger: logger}

	auditService := audit.NewService(audit.NewRepository(dbpool), logger)
	auditHandler := audithttp.NewHandler(logger, auditService, rbacMiddleware)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	recorder := dashboard.InvalidatingRecorder{Recorder: auditService, Cache: dashboardCache, Logger: logger}

	usersService := users.NewService(users.NewRepository(dbpool), recorder)
	categoriesService := categories.NewService(categories.NewRepository(dbpool), recorder)
	productsService := products.NewService(products.NewRepository(dbpool), recorder)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	appUsersService := appusers.NewService(appusers.NewRepository(dbpool), jobClient, recorder, logger)

	inquiriesService := inquiries.NewService(inquiries.NewRepository(dbpool), shared.NewIdempotencyStore(dbpool), recorder)

	announcementRepo := announcements.NewRepository(dbpool)
	notificationsService := announcements.NewService(announcements.KindNotification, announcementRepo, recorder)
	whatsNewService := announcements.NewService(announcements.KindWhatsNew, announcementRepo, recorder)

	dashboardService := dashboard.NewService(map[rbac.Resource]dashboard.Counter{
		rbac.ResourceProducts:      productsService,
		rbac.ResourceCategories:    categoriesService,
		rbac.ResourceUsers:         usersService,
		rbac.ResourceInquiries:     inquiriesService,
		rbac.ResourceAppUsers:      appUsersService,
		rbac.ResourceNotifications: notificationsService,
		rbac.ResourceWhatsNew:      whatsNewService,
		rbac.ResourceLogs: dashboard.CounterFunc(func(ctx context.Context) (int, error) {
			n, err := auditService.Count(ctx)
			return int(n), err
		}),
	}, auditService).WithCache(dashboardCache)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Registry:             registry,
		AuthHandler:          authHandler,
		UsersHandler:         users.NewHandler(logger, usersService, rbacMiddleware),
		CategoriesHandler:    categories.NewHandler(logger, categoriesService, rbacMiddleware),
		ProductsHandler:      products.NewHandler(logger, productsService, rbacMiddleware),
		AppUsersHandler:      appusers.NewHandler(logger, appUsersService, rbacMiddleware),
		InquiriesHandler:     inquiries.NewHandler(logger, inquiriesService, rbacMiddleware),
		NotificationsHandler: announcements.NewHandler(logger, notificationsService, rbacMiddleware),
		WhatsNewHandler:      announcements.NewHandler(logger, whatsNewService, rbacMiddleware),
		AuditHandler:         auditHandler,
		DashboardHandler:     dashboard.NewHandler(logger, dashboardService),
		PermissionsHandler:   rbac.NewPermissionsHandler(logger),
		JobHandler:           jobs.NewHandler(inspector, logger),
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobsCommand handles `catalogdesk jobs <stats|scheduled|test-mail>`.
func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		slog.Default().Error("init jobs cli", slog.Any("error", err))
		return 1
	}
	defer func() { _ = jobsCLI.Close() }()
	return jobsCLI.Run(ctx, args, os.Stdout, os.Stderr)
}

