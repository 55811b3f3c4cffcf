package notiondatabase

import (
	"context"
	"time"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/metrics"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/models"
	"session-provisioner/internal/schema"

	"go.opentelemetry.io/otel/attribute"
)

const providerLabel = "notion"

type Service struct {
	config *Config
	logger logger.Logger
	client NotionClient
	obs    *observability.Observability
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		config: config,
		logger: deps.Logger,
		client: deps.Client,
		obs:    deps.Observability,
		now:    now,
	}
}

// Execute verifies the parent page, creates the tracker database and seeds
// one sample row. Only the first two steps can fail the run.
func (s *Service) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "notion.provision",
		attribute.String("notion.parent_page_id", input.ParentPageID))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.ProvisioningOutcomes.WithLabelValues(providerLabel, outcome).Inc()
		metrics.ProvisioningDuration.WithLabelValues(providerLabel).Observe(time.Since(start).Seconds())
		s.obs.RecordProvision(ctx, providerLabel, outcome)
		s.obs.RecordProvisionDuration(ctx, time.Since(start), providerLabel, outcome)
		observability.EndSpan(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	cfg := input.Config.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error(), nil)
	}

	s.logger.Info("Provisioning Notion database", map[string]interface{}{
		"parentPageId": input.ParentPageID,
		"platform":     string(cfg.Platform),
		"rules":        schema.AppliedRules(cfg),
	})

	if _, err := s.client.GetPage(ctx, input.ParentPageID); err != nil {
		s.logger.Warn("Parent page verification failed", map[string]interface{}{
			"parentPageId": input.ParentPageID,
			"error":        err.Error(),
		})
		return nil, err
	}

	definition := schema.MapNotion(cfg)

	title := input.DatabaseTitle
	if title == "" {
		title = s.config.DatabaseTitle
	}

	db, err := s.client.CreateDatabase(ctx, input.ParentPageID, title, definition.Fields)
	if err != nil {
		s.logger.Error("Database creation failed", map[string]interface{}{
			"parentPageId": input.ParentPageID,
			"error":        err.Error(),
		})
		return nil, err
	}

	out = &Output{
		ID:         db.ID,
		URL:        db.URL,
		Properties: definition.PropertyTypes(),
		Views:      definition.ViewNames(),
		Warnings:   []string{},
	}

	if !s.config.SkipSample {
		seed := s.seed(ctx, db.ID, cfg, definition)
		if seed.Err != nil {
			metrics.SeedFailures.WithLabelValues(providerLabel).Inc()
			s.logger.Warn("Sample page seeding failed", map[string]interface{}{
				"databaseId": db.ID,
				"error":      seed.Err.Error(),
			})
			out.Warnings = append(out.Warnings, "Sample page could not be created; the database is ready to use")
		} else {
			out.SamplePageID = seed.RecordID
		}
	}

	s.logger.Info("Notion database provisioned", map[string]interface{}{
		"databaseId": db.ID,
		"properties": len(out.Properties),
		"seeded":     out.SamplePageID != "",
	})
	return out, nil
}

func (s *Service) seed(ctx context.Context, databaseID string, cfg models.BuildConfig, def schema.NotionSchema) SeedOutcome {
	ctx, span := observability.StartSpan(ctx, "notion.seed_sample")
	page, err := s.client.CreatePage(ctx, databaseID, def.Fields, schema.SampleValues(cfg, s.now()))
	observability.EndSpan(span, err)
	if err != nil {
		return SeedOutcome{Err: err}
	}
	return SeedOutcome{RecordID: page.ID}
}

// TestConnection reads the page to prove the token can reach it.
func (s *Service) TestConnection(ctx context.Context, pageID string) (*ConnectionOutput, error) {
	ctx, span := observability.StartSpan(ctx, "notion.test_connection")
	page, err := s.client.TestConnection(ctx, pageID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &ConnectionOutput{Connected: true, PageID: pageID, URL: page.URL}, nil
}
