package http

import (
	"context"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/billing"
	"lincognito/internal/config"
	"lincognito/internal/http/handler"
	"lincognito/internal/http/middleware"
	"lincognito/internal/infra/cache"
	"lincognito/internal/notify"
	"lincognito/internal/rbac/presets"
	"lincognito/internal/repository"
	"lincognito/internal/service/publishing"
	"lincognito/pkg/metrics"
	"lincognito/pkg/profiling"
	"lincognito/pkg/validator"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const requestBodyLimit = "1M"

type ServerDependencies struct {
	Config         *config.Config
	Log            *logrus.Logger
	DB             handler.Pinger
	Repos          *repository.Repositories
	JWTService     *auth.JWTService
	Hasher         *auth.PasswordHasher
	Access         *auth.Access
	AuthMiddleware *auth.Middleware
	RBACMiddleware *auth.RBACMiddleware
	AuditLogger    *audit.Logger
	Mailer         *notify.Dispatcher
	Publisher      *publishing.Service
	Billing        *billing.Service
	Stats          *cache.StatsCache
	// Media is nil when no bucket is configured.
	Media   handler.MediaStorage
	Metrics *metrics.Collector
	Blog    []handler.BlogPost
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = validator.NewRequestValidator()

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(deps.Metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	if len(deps.Config.Server.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.Config.Server.AllowedOrigins,
			AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
			AllowCredentials: true,
		}))
	}

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter()

	repos := deps.Repos
	log := deps.Log

	authHandler := handler.NewAuthHandler(repos.Users, repos.Tx, repos.PasswordResets, deps.JWTService, deps.Hasher, deps.Mailer, deps.AuditLogger, deps.Config.App.PasswordResetTTL, log)
	clientHandler := handler.NewClientHandler(repos.Clients, repos.Posts, deps.Access, deps.Stats, repos.Users, repos.Notifications, deps.Mailer, deps.AuditLogger, log)
	postHandler := handler.NewPostHandler(repos.Posts, deps.Access, deps.Publisher, deps.Media, deps.Stats, deps.AuditLogger, log)
	templateHandler := handler.NewTemplateHandler(repos.Templates, deps.AuditLogger, log)
	messageHandler := handler.NewMessageHandler(repos.Messages, repos.Posts, deps.Access, deps.AuditLogger, log)
	notificationHandler := handler.NewNotificationHandler(repos.Notifications, log)
	searchHandler := handler.NewSearchHandler(handler.SearchSources{
		Clients:   repos.Clients,
		Posts:     repos.Posts,
		Templates: repos.Templates,
		Messages:  repos.Messages,
	}, log)
	billingHandler := handler.NewBillingHandler(deps.Billing, repos.Users, deps.Config.Stripe.WebhookSecret, log)
	agencyHandler := handler.NewAgencyHandler(repos.Agencies, repos.Users, deps.AuditLogger, log)
	seoHandler := handler.NewSEOHandler(deps.Config.App.SiteURL, deps.Blog, time.Now())
	healthHandler := handler.NewHealthHandler(deps.DB)

	// Public
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", deps.Metrics.Handler())
	e.GET("/robots.txt", seoHandler.Robots)
	e.GET("/sitemap.xml", seoHandler.Sitemap)
	if deps.Config.Server.Profiling {
		profiling.Register(e)
		log.Warn("Profiling endpoints enabled under /debug")
	}

	api := e.Group("/api")
	api.GET("/blog", seoHandler.ListBlogPosts)
	api.GET("/blog/:slug", seoHandler.GetBlogPost)
	api.GET("/billing/plans", billingHandler.Plans)
	api.POST("/stripe/webhook", billingHandler.Webhook)

	api.POST("/auth/signup", authHandler.Signup, strictRateLimiter.Middleware())
	api.POST("/auth/login", authHandler.Login, strictRateLimiter.Middleware())
	api.POST("/auth/forgot-password", authHandler.ForgotPassword, strictRateLimiter.Middleware())
	api.POST("/auth/reset-password", authHandler.ResetPassword, strictRateLimiter.Middleware())

	jwtAPI := api.Group("")
	jwtAPI.Use(deps.AuthMiddleware.RequireJWT())
	jwtAPI.Use(middleware.NewUserRateLimiter().Middleware())

	jwtAPI.GET("/auth/me", authHandler.Me)
	jwtAPI.PUT("/auth/me", authHandler.UpdateMe)

	rbac := deps.RBACMiddleware

	jwtAPI.POST("/clients", clientHandler.CreateClient)
	jwtAPI.GET("/clients", clientHandler.ListClients)
	jwtAPI.GET("/clients/:id", clientHandler.GetClient, rbac.RequireClientAccess(presets.ResourceClient, presets.ActionRead))
	jwtAPI.PUT("/clients/:id", clientHandler.UpdateClient, rbac.RequireClientAccess(presets.ResourceClient, presets.ActionWrite))
	jwtAPI.DELETE("/clients/:id", clientHandler.DeleteClient, rbac.RequireClientAccess(presets.ResourceClient, presets.ActionDelete))
	jwtAPI.GET("/clients/:id/stats", clientHandler.GetClientStats, rbac.RequireClientAccess(presets.ResourceClient, presets.ActionRead))
	jwtAPI.DELETE("/clients/:id/linkedin", clientHandler.DisconnectLinkedIn, rbac.RequireClientAccess(presets.ResourceClient, presets.ActionWrite))

	// Post routes resolve the client from the post, so access is checked in the handler.
	jwtAPI.POST("/posts", postHandler.CreatePost)
	jwtAPI.GET("/posts", postHandler.ListPosts)
	jwtAPI.GET("/posts/:id", postHandler.GetPost)
	jwtAPI.PUT("/posts/:id", postHandler.UpdatePost)
	jwtAPI.DELETE("/posts/:id", postHandler.DeletePost)
	jwtAPI.PUT("/posts/:id/engagement", postHandler.UpdateEngagement)
	jwtAPI.POST("/posts/:id/transition", postHandler.Transition)
	jwtAPI.POST("/posts/:id/collaborate", postHandler.Collaborate)
	jwtAPI.GET("/posts/:id/activity", postHandler.Activity)
	jwtAPI.POST("/posts/:id/media", postHandler.CreateMediaUpload)
	jwtAPI.GET("/posts/:id/media", postHandler.ListMedia)

	jwtAPI.GET("/templates", templateHandler.ListTemplates)
	jwtAPI.POST("/templates", templateHandler.CreateTemplate)
	jwtAPI.GET("/templates/:id", templateHandler.GetTemplate)
	jwtAPI.PUT("/templates/:id", templateHandler.UpdateTemplate)
	jwtAPI.DELETE("/templates/:id", templateHandler.DeleteTemplate)
	jwtAPI.POST("/templates/:id/use", templateHandler.UseTemplate)

	jwtAPI.GET("/messages", messageHandler.ListMessages)
	jwtAPI.POST("/messages", messageHandler.ComposeMessage)
	jwtAPI.GET("/messages/:id", messageHandler.GetMessage)
	jwtAPI.POST("/messages/:id/read", messageHandler.MarkRead)
	jwtAPI.POST("/messages/:id/reply", messageHandler.Reply)
	jwtAPI.DELETE("/messages/:id", messageHandler.DeleteMessage)

	// Static segments before /:id
	jwtAPI.GET("/notifications", notificationHandler.ListNotifications)
	jwtAPI.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	jwtAPI.GET("/notifications/settings", notificationHandler.GetSettings)
	jwtAPI.PUT("/notifications/settings", notificationHandler.UpdateSettings)
	jwtAPI.POST("/notifications/:id/read", notificationHandler.MarkRead)

	jwtAPI.GET("/search", searchHandler.Search)

	jwtAPI.GET("/billing/subscription", billingHandler.Subscription)
	jwtAPI.POST("/stripe/create-checkout", billingHandler.CreateCheckout)
	jwtAPI.POST("/stripe/customer-portal", billingHandler.CustomerPortal)

	jwtAPI.POST("/agencies", agencyHandler.CreateAgency)
	jwtAPI.GET("/agencies", agencyHandler.ListAgencies)
	jwtAPI.GET("/agencies/:id", agencyHandler.GetAgency, rbac.RequireAgencyAccess(presets.ResourceMember, presets.ActionRead))
	jwtAPI.POST("/agencies/:id/members", agencyHandler.AddMember, rbac.RequireAgencyAccess(presets.ResourceMember, presets.ActionManage))
	jwtAPI.PUT("/agencies/:id/members/:userId", agencyHandler.UpdateMemberRole, rbac.RequireAgencyAccess(presets.ResourceMember, presets.ActionManage))
	jwtAPI.DELETE("/agencies/:id/members/:userId", agencyHandler.RemoveMember, rbac.RequireAgencyAccess(presets.ResourceMember, presets.ActionManage))

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
