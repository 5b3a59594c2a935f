package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hintboard/hintboard/internal/announcement"
	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
	"github.com/hintboard/hintboard/internal/auth"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/auth/session"
	"github.com/hintboard/hintboard/internal/cloudmetrics"
	"github.com/hintboard/hintboard/internal/config"
	"github.com/hintboard/hintboard/internal/idea"
	ideadomain "github.com/hintboard/hintboard/internal/idea/domain"
	"github.com/hintboard/hintboard/internal/imaging"
	"github.com/hintboard/hintboard/internal/observability/logger"
	obsmetrics "github.com/hintboard/hintboard/internal/observability/metrics"
	obstracing "github.com/hintboard/hintboard/internal/observability/tracing"
	"github.com/hintboard/hintboard/internal/organization"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
	"github.com/hintboard/hintboard/internal/ratelimit"
	"github.com/hintboard/hintboard/internal/subscription"
	subscriptiondomain "github.com/hintboard/hintboard/internal/subscription/domain"
	"github.com/hintboard/hintboard/internal/tenant"
	"github.com/hintboard/hintboard/internal/topic"
	topicdomain "github.com/hintboard/hintboard/internal/topic/domain"
)

const shutdownTimeout = 10 * time.Second

var Module = fx.Module("http.server",
	auth.Module,
	organization.Module,
	subscription.Module,
	topic.Module,
	idea.Module,
	announcement.Module,
	imaging.Module,
	ratelimit.Module,
	tenant.Module,
	cloudmetrics.Module,
	session.Module,

	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

// Server holds the handler dependencies. Route registration hangs every
// handler off this struct so tests can build a partial Server with fakes.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	engine   *gin.Engine
	sessions *session.Manager

	resolver tenant.Resolver

	authsvc  authdomain.Service
	orgsvc   organizationdomain.Service
	subsvc   subscriptiondomain.Service
	topicsvc topicdomain.Service
	ideasvc  ideadomain.Service
	annsvc   announcementdomain.Service

	compressor *imaging.Compressor
	limiter    *ratelimit.SubmissionLimiter
}

type ServerParams struct {
	fx.In

	Config   config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Engine   *gin.Engine
	Sessions *session.Manager
	Resolver tenant.Resolver

	AuthService         authdomain.Service
	OrgService          organizationdomain.Service
	SubscriptionService subscriptiondomain.Service
	TopicService        topicdomain.Service
	IdeaService         ideadomain.Service
	AnnouncementService announcementdomain.Service

	Compressor *imaging.Compressor
	Limiter    *ratelimit.SubmissionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		cfg:        p.Config,
		log:        p.Logger.Named("server"),
		db:         p.DB,
		engine:     p.Engine,
		sessions:   p.Sessions,
		resolver:   p.Resolver,
		authsvc:    p.AuthService,
		orgsvc:     p.OrgService,
		subsvc:     p.SubscriptionService,
		topicsvc:   p.TopicService,
		ideasvc:    p.IdeaService,
		annsvc:     p.AnnouncementService,
		compressor: p.Compressor,
		limiter:    p.Limiter,
	}
}

type EngineParams struct {
	fx.In

	Config      config.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
	Gate        *tenant.Gate
	Sessions    *session.Manager
}

// NewEngine assembles the gin engine with the shared middleware chain. The
// tenant gate runs after observability so redirects and rewrites still get
// logged and counted.
func NewEngine(p EngineParams) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug:           p.Config.Environment != "production",
		ErrorClassifier: classifyError,
	}))
	engine.Use(obstracing.GinMiddleware())
	engine.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	engine.Use(ErrorHandlingMiddleware())
	engine.Use(tenant.GinMiddleware(p.Gate, p.Sessions))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		p.HTTPMetrics.Registry(),
		promhttp.HandlerOpts{},
	)))

	return engine
}

func registerRoutes(s *Server) {
	s.registerAuthRoutes()
	s.registerBoardRoutes()
	s.registerFallback()
}

// registerAuthRoutes wires the account-level API: authentication and the
// caller's organization list. These routes are tenant-neutral.
func (s *Server) registerAuthRoutes() {
	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.Signup)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)

	orgs := api.Group("/organizations", s.AuthRequired())
	orgs.POST("", s.CreateOrganization)
	orgs.GET("", s.ListOrganizations)

	billing := api.Group("/billing", s.AuthRequired())
	billing.GET("/subscription", s.GetSubscription)
}

// registerBoardRoutes wires the tenant-scoped API. The page gate skips /api,
// so TenantContext re-resolves the organization from the Host header here.
func (s *Server) registerBoardRoutes() {
	board := s.engine.Group("/api", s.TenantContext())

	board.GET("/organization", s.GetOrganization)
	board.PATCH("/organization/settings", s.AuthRequired(), s.RequireRole(organizationdomain.RoleAdmin), s.UpdateOrganizationSettings)

	ideas := board.Group("/ideas")
	ideas.GET("", s.ListIdeas)
	ideas.GET("/:id", s.GetIdea)
	ideas.POST("", s.AuthRequired(), s.CreateIdea)
	ideas.PATCH("/:id/status", s.AuthRequired(), s.RequireRole(organizationdomain.RoleAdmin), s.UpdateIdeaStatus)
	ideas.POST("/:id/vote", s.AuthRequired(), s.VoteIdea)
	ideas.DELETE("/:id/vote", s.AuthRequired(), s.UnvoteIdea)

	topics := board.Group("/topics")
	topics.GET("", s.ListTopics)
	topics.POST("", s.AuthRequired(), s.RequireRole(organizationdomain.RoleAdmin), s.CreateTopic)
	topics.DELETE("/:id", s.AuthRequired(), s.RequireRole(organizationdomain.RoleAdmin), s.DeleteTopic)

	announcements := board.Group("/announcements")
	announcements.GET("", s.ListAnnouncements)
	announcements.GET("/:id", s.GetAnnouncement)

	adminAnnouncements := board.Group("/announcements", s.AuthRequired(), s.RequireRole(organizationdomain.RoleAdmin))
	adminAnnouncements.POST("", s.CreateAnnouncement)
	adminAnnouncements.PATCH("/:id", s.UpdateAnnouncement)
	adminAnnouncements.POST("/:id/publish", s.PublishAnnouncement)
	adminAnnouncements.POST("/:id/unpublish", s.UnpublishAnnouncement)
	adminAnnouncements.DELETE("/:id", s.DeleteAnnouncement)

	images := board.Group("/images", s.AuthRequired())
	images.POST("/compress", s.CompressImage)
}

// registerFallback serves the SPA bundle for everything the API does not
// claim. The tenant gate has already vetted the request by the time the
// fallback runs.
func (s *Server) registerFallback() {
	const root = "./public"

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			AbortWithError(c, ErrNotFound)
			return
		}

		requested := filepath.Join(root, filepath.Clean("/"+c.Request.URL.Path))
		if !strings.HasPrefix(requested, filepath.Clean(root)+string(os.PathSeparator)) && requested != filepath.Clean(root) {
			AbortWithError(c, ErrNotFound)
			return
		}
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(filepath.Join(root, "index.html"))
	})
}

func run(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
