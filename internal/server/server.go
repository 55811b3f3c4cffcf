// Package server assembles the HTTP surface: middleware pipeline, route
// table and operational endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/middleware"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/common/ratelimit"
	baseintrospection "session-provisioner/internal/diagnostics/base-introspection"
	connectiontest "session-provisioner/internal/diagnostics/connection-test"
	schemapreview "session-provisioner/internal/diagnostics/schema-preview"
	airtablebase "session-provisioner/internal/provisioning/airtable-base"
	notiondatabase "session-provisioner/internal/provisioning/notion-database"
	"session-provisioner/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AirtableClient covers provisioning and base introspection.
type AirtableClient interface {
	airtablebase.AirtableClient
	baseintrospection.AirtableClient
}

type Dependencies struct {
	Config         *config.Config
	Logger         logger.Logger
	Observability  *observability.Observability
	NotionClient   notiondatabase.NotionClient
	AirtableClient AirtableClient
	// Store backs both rate limiters.
	Store ratelimit.Store
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	config     *config.Config
	logger     logger.Logger
	engine     *gin.Engine
	httpServer *http.Server
	registry   *registry.EndpointRegistry
	ready      func(ctx context.Context) error
}

func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("server requires a config")
	}
	if deps.NotionClient == nil || deps.AirtableClient == nil {
		return nil, fmt.Errorf("server requires Notion and Airtable clients")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a rate-limit store")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	cfg := deps.Config

	s := &Server{
		config:   cfg,
		logger:   log,
		registry: registry.New(RegistryVersion, Endpoints(), time.Now()),
		ready:    deps.Ready,
	}

	handlers, err := s.buildHandlers(deps)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	general := ratelimit.NewFixedWindowLimiter(ratelimit.Policy{
		Name:   GeneralLimiter,
		Max:    cfg.RateLimit.General.Max,
		Window: config.GetWindow(cfg.RateLimit.General.Window),
	}, deps.Store, cfg.RateLimit.KeyPrefix)
	provisioning := ratelimit.NewFixedWindowLimiter(ratelimit.Policy{
		Name:   ProvisioningLimiter,
		Max:    cfg.RateLimit.Provisioning.Max,
		Window: config.GetWindow(cfg.RateLimit.Provisioning.Window),
	}, deps.Store, cfg.RateLimit.KeyPrefix)

	engine.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.ErrorHandler(errors.NewErrorHandler(log, !cfg.App.IsProduction()), "/api/provision"),
		middleware.Recovery(),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
		middleware.RequireJSON(),
		middleware.Security(log),
		middleware.RateLimit(middleware.RateLimitOptions{
			Name:      GeneralLimiter,
			Limiter:   general,
			Code:      errors.ErrCodeRateLimitExceeded,
			SkipPaths: UnlimitedPaths,
			Logger:    log,
		}),
	)
	engine.NoRoute(middleware.NotFound())
	engine.NoMethod(middleware.MethodNotAllowed())

	provisioningLimit := middleware.RateLimit(middleware.RateLimitOptions{
		Name:    ProvisioningLimiter,
		Limiter: provisioning,
		Code:    errors.ErrCodeProvisioningRateLimitExceeded,
		Logger:  log,
	})

	for _, e := range s.registry.Endpoints {
		h, ok := handlers[e.ID]
		if !ok {
			return nil, fmt.Errorf("no handler for endpoint %s", e.ID)
		}
		chain := []gin.HandlerFunc{h}
		if isProvisioning(e) {
			chain = []gin.HandlerFunc{provisioningLimit, h}
		}
		engine.Handle(e.Method, e.Path, chain...)
	}

	s.engine = engine
	s.httpServer = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s, nil
}

func (s *Server) buildHandlers(deps Dependencies) (map[string]gin.HandlerFunc, error) {
	notionHandler, err := notiondatabase.NewHandler(notiondatabase.HandlerOptions{
		AppConfig:     deps.Config,
		Logger:        s.logger,
		Client:        deps.NotionClient,
		Observability: deps.Observability,
	})
	if err != nil {
		return nil, err
	}

	airtableHandler, err := airtablebase.NewHandler(airtablebase.HandlerOptions{
		AppConfig:     deps.Config,
		Logger:        s.logger,
		Client:        deps.AirtableClient,
		Observability: deps.Observability,
	})
	if err != nil {
		return nil, err
	}

	testHandler, err := connectiontest.NewHandler(s.logger, notionHandler.Service(), airtableHandler.Service())
	if err != nil {
		return nil, err
	}

	introspection, err := baseintrospection.NewHandler(s.logger, deps.AirtableClient)
	if err != nil {
		return nil, err
	}

	preview, err := schemapreview.NewHandler()
	if err != nil {
		return nil, err
	}

	return map[string]gin.HandlerFunc{
		"provision-notion":       notionHandler.Provision,
		"provision-airtable":     airtableHandler.Provision,
		"test-notion":            testHandler.TestNotion,
		"test-airtable":          testHandler.TestAirtable,
		"list-airtable-tables":   introspection.ListTables,
		"list-airtable-fields":   introspection.ListFields,
		"update-airtable-record": introspection.UpdateRecord,
		"delete-airtable-record": introspection.DeleteRecord,
		"schema-preview":         preview.Preview,
		"endpoints":              s.endpoints,
		"health":                 s.health,
		"ready":                  s.readiness,
		"metrics":                gin.WrapH(promhttp.Handler()),
	}, nil
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Registry() *registry.EndpointRegistry {
	return s.registry
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr":        s.httpServer.Addr,
		"environment": s.config.App.Environment,
		"endpoints":   len(s.registry.Endpoints),
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.config.App.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readiness(c *gin.Context) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) endpoints(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry)
}
