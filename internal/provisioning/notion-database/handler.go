package notiondatabase

import (
	"context"
	"fmt"
	"net/http"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/middleware"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/common/validation"

	"github.com/gin-gonic/gin"
)

const Route = "/api/provision/notion"

// Provisioner is implemented by *Service.
type Provisioner interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
	TestConnection(ctx context.Context, pageID string) (*ConnectionOutput, error)
}

type Handler struct {
	config         *Config
	logger         logger.Logger
	service        Provisioner
	inputValidator *validation.Validator
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Client        NotionClient
	Observability *observability.Observability
	// Service overrides the service built from Client.
	Service Provisioner
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for notion-database: %w", err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	inputValidator, err := validation.Compile(GetInputSchema())
	if err != nil {
		return nil, fmt.Errorf("notion-database input schema: %w", err)
	}

	handler := &Handler{
		config:         handlerConfig,
		logger:         loggerInstance,
		service:        opts.Service,
		inputValidator: inputValidator,
	}

	if handler.service == nil {
		if opts.Client == nil {
			return nil, fmt.Errorf("notion-database requires a Notion client")
		}
		handler.service = NewService(ServiceDependencies{
			Logger:        loggerInstance,
			Client:        opts.Client,
			Observability: opts.Observability,
		}, handlerConfig)
	}

	return handler, nil
}

// Service exposes the provisioner so diagnostics can share it.
func (h *Handler) Service() Provisioner {
	return h.service
}

// Provision handles POST /api/provision/notion.
func (h *Handler) Provision(c *gin.Context) {
	input, err := h.parseInput(c)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	output, err := h.service.Execute(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, output)
}

func (h *Handler) parseInput(c *gin.Context) (*Input, error) {
	body := middleware.GetRawBody(c)
	if body == nil {
		data, err := c.GetRawData()
		if err != nil {
			return nil, err
		}
		body = data
	}

	var input Input
	payload, err := validation.DecodeAndValidate(body, h.inputValidator, &input)
	if payload != nil {
		middleware.SetPayload(c, payload)
	}
	if err != nil {
		return nil, err
	}
	return &input, nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	p := appConfig.Provisioning.Notion
	if p.DatabaseTitle != "" {
		cfg.DatabaseTitle = p.DatabaseTitle
	}
	cfg.SkipSample = p.SkipSample
	if p.Timeout > 0 {
		cfg.Timeout = config.GetDuration(p.Timeout)
	}
	return cfg
}
