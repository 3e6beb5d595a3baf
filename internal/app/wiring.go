package app

import (
	"context"
	"fmt"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/billing"
	"lincognito/internal/config"
	apphttp "lincognito/internal/http"
	"lincognito/internal/http/handler"
	"lincognito/internal/infra/cache"
	"lincognito/internal/jobs"
	"lincognito/internal/notify"
	"lincognito/internal/repository"
	"lincognito/internal/repository/postgres"
	"lincognito/internal/service/publishing"
	"lincognito/internal/storage/s3"
	"lincognito/pkg/mailer"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/templates"
	"lincognito/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// InitializeService wires up all dependencies and returns a configured Service.
func InitializeService(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts Options) (svc *Service, err error) {
	var cleanup closers
	defer func() {
		if err != nil {
			runClosers(cleanup, log)
		}
	}()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup.add(func() error { db.Close(); return nil })
	log.Info("Database connection established")

	repos := repository.NewPostgres(db)
	collector := metrics.New(serviceName)

	store, memory, err := newCacheStore(ctx, cfg.Redis, log, &cleanup)
	if err != nil {
		return nil, err
	}
	stats := cache.NewStatsCache(store, cfg.App.StatsCacheTTL, log)
	urls := cache.NewURLCache()

	dispatcher, err := newDispatcher(cfg, log, collector)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() error { dispatcher.Wait(); return nil })

	access := auth.NewAccess(repos.Clients, repos.Agencies)
	auditLogger := audit.NewLogger(db.Pool, log)

	publisher := publishing.NewService(publishing.Deps{
		Access:        access,
		Posts:         repos.Posts,
		Clients:       repos.Clients,
		Users:         repos.Users,
		Messages:      repos.Messages,
		Notifications: repos.Notifications,
		Activity:      auditLogger,
		Mailer:        dispatcher,
		Stats:         stats,
		Log:           log,
	})

	weekly := jobs.NewWeeklyReport(repos.Users, repos.Clients, repos.Posts, dispatcher, log)
	scheduler := jobs.NewScheduler(log, collector)

	svc = &Service{
		config:    cfg,
		log:       log,
		db:        db,
		memory:    memory,
		urlCache:  urls,
		scheduler: scheduler,
		weekly:    weekly,
	}

	if opts.Mode == ModeJob {
		svc.closers = cleanup
		return svc, nil
	}

	if cfg.App.WeeklyReportEnabled {
		if _, err := scheduler.Add(cfg.App.WeeklyReportSchedule, weekly); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", weekly.Name(), err)
		}
	}

	var media handler.MediaStorage
	if cfg.AWS.MediaEnabled() {
		mediaStore, err := s3.NewMediaStore(&cfg.AWS, urls)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		media = mediaStore
		log.WithField("bucket", cfg.AWS.MediaBucket).Info("Media storage enabled")
	} else {
		log.Warn("MEDIA_BUCKET not set, media uploads disabled")
	}

	var gateway billing.Gateway
	if cfg.Stripe.Enabled() {
		gateway = billing.NewStripeGateway(cfg.Stripe.SecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}
	billingService := billing.NewService(gateway, billing.NewCatalog(cfg.Stripe), repos.Users, cfg.App.AppURL, log)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)

	blog := opts.Blog
	if blog == nil {
		blog = handler.DefaultBlog
	}

	svc.server = apphttp.NewServer(&apphttp.ServerDependencies{
		Config:         cfg,
		Log:            log,
		DB:             db,
		Repos:          repos,
		JWTService:     jwtService,
		Hasher:         auth.NewPasswordHasher(cfg.App.BcryptCost),
		Access:         access,
		AuthMiddleware: auth.NewMiddleware(jwtService),
		RBACMiddleware: auth.NewRBACMiddleware(access, log),
		AuditLogger:    auditLogger,
		Mailer:         dispatcher,
		Publisher:      publisher,
		Billing:        billingService,
		Stats:          stats,
		Media:          media,
		Metrics:        collector,
		Blog:           blog,
	})
	svc.closers = cleanup

	return svc, nil
}

// newCacheStore prefers Redis and falls back to process memory.
func newCacheStore(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger, cleanup *closers) (cache.Store, *cache.MemoryStore, error) {
	if !cfg.Enabled() {
		log.Info("REDIS_ADDR not set, using in-memory stats cache")
		memory := cache.NewMemoryStore()
		return memory, memory, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, redisConnectLimit)
	defer cancel()

	client, err := cache.NewRedisClient(connectCtx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	cleanup.addCloser(client)
	log.WithField("addr", cfg.Addr).Info("Redis connection established")

	return cache.NewRedisStore(client, redisKeyPrefix), nil, nil
}

// newDispatcher returns a dispatcher with no email service when no provider is
// configured; sends are then logged and dropped.
func newDispatcher(cfg *config.Config, log *logrus.Logger, collector *metrics.Collector) (*notify.Dispatcher, error) {
	tpl, err := templates.LoadSet()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	notifyCfg := notify.Config{
		AppURL:      cfg.App.AppURL,
		MaxInFlight: cfg.Email.MaxInFlight,
	}

	var list []providers.EmailProvider
	if cfg.Email.ResendAPIKey != "" {
		list = append(list, providers.WithRetry(
			providers.NewResendProvider(providers.ResendConfig{APIKey: cfg.Email.ResendAPIKey}),
			providers.DefaultRetryConfig(),
		))
	}
	if cfg.Email.SendGridAPIKey != "" {
		list = append(list, providers.WithRetry(
			providers.NewSendGridProvider(providers.SendGridConfig{APIKey: cfg.Email.SendGridAPIKey}),
			providers.DefaultRetryConfig(),
		))
	}
	if len(list) == 0 {
		log.Warn("No email provider configured, transactional email disabled")
		return notify.NewDispatcher(nil, tpl, notifyCfg, log, collector), nil
	}

	svc, err := mailer.NewEmailService(mailer.EmailServiceConfig{
		Providers:   list,
		DefaultFrom: cfg.Email.From,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}

	return notify.NewDispatcher(svc, tpl, notifyCfg, log, collector), nil
}
