package airtablebase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/metrics"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/models"
	"session-provisioner/internal/schema"

	"go.opentelemetry.io/otel/attribute"
)

const (
	providerLabel = "airtable"
	baseURLPrefix = "https://airtable.com/"
	dateLayout    = "2006-01-02"
)

type Service struct {
	config *Config
	logger logger.Logger
	client AirtableClient
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

// Execute validates an existing base against the tracker checklist. Nothing
// in the base is modified except the optional sample record. Missing fields
// are warnings; only an unreachable base or an absent table fail the run.
func (s *Service) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "airtable.provision",
		attribute.String("airtable.base_id", input.BaseID),
		attribute.Bool("airtable.seed_sample", input.SeedSample))
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

	checklist := schema.AirtableRequired()
	var cfg models.BuildConfig
	if input.Config != nil {
		cfg = input.Config.Normalize()
		if err := cfg.Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error(), nil)
		}
		checklist = schema.MapAirtable(cfg)
	} else {
		cfg = models.BuildConfig{}.Normalize()
	}

	table := s.client.TableName()
	s.logger.Info("Validating Airtable base", map[string]interface{}{
		"baseId":     input.BaseID,
		"table":      table,
		"seedSample": input.SeedSample,
		"hasConfig":  input.Config != nil,
	})

	if err := s.client.TestConnection(ctx, input.BaseID); err != nil {
		return nil, s.connectionFailure(ctx, input.BaseID, table, err)
	}

	fields, sampled, err := s.client.GetFieldNames(ctx, input.BaseID, table)
	if err != nil {
		return nil, err
	}

	out = &Output{
		Valid:                 true,
		URL:                   baseURLPrefix + input.BaseID,
		Table:                 table,
		Fields:                fields,
		MissingFields:         []string{},
		MissingOptionalFields: []string{},
		Warnings:              []string{},
	}

	if sampled {
		missing, missingOptional := checklist.Diff(fields)
		out.MissingFields = missing
		if len(missing) > 0 {
			out.Warnings = append(out.Warnings, "Missing recommended fields: "+strings.Join(missing, ", "))
		}
		if input.Config != nil {
			out.MissingOptionalFields = missingOptional
			if len(missingOptional) > 0 {
				out.Warnings = append(out.Warnings, "Missing optional fields for selected features: "+strings.Join(missingOptional, ", "))
			}
		}
	} else {
		out.Warnings = append(out.Warnings, "Table has no records, so its fields could not be checked")
	}

	count, err := s.client.CountRecords(ctx, input.BaseID, table)
	if err != nil {
		return nil, err
	}
	out.RecordCount = count.Count
	out.RecordCountCapped = count.Capped

	if input.SeedSample {
		if !sampled {
			out.Warnings = append(out.Warnings, "Sample record skipped because the table fields are unknown")
		} else {
			seed := s.seed(ctx, input.BaseID, table, fields, cfg)
			if seed.Err != nil {
				metrics.SeedFailures.WithLabelValues(providerLabel).Inc()
				s.logger.Warn("Sample record seeding failed", map[string]interface{}{
					"baseId": input.BaseID,
					"error":  seed.Err.Error(),
				})
				out.Warnings = append(out.Warnings, "Sample record could not be created; the base is still valid")
			} else {
				out.SampleRecordID = seed.RecordID
				if !out.RecordCountCapped {
					out.RecordCount++
				}
			}
		}
	}

	s.logger.Info("Airtable base validated", map[string]interface{}{
		"baseId":        input.BaseID,
		"fields":        len(out.Fields),
		"missingFields": len(out.MissingFields),
		"recordCount":   out.RecordCount,
		"seeded":        out.SampleRecordID != "",
	})
	return out, nil
}

// connectionFailure turns a failed table probe into the caller-facing
// error. When the base answers for other tables the probe failed because the
// table is absent, which is reported with the tables that were found.
func (s *Service) connectionFailure(ctx context.Context, baseID, table string, err error) error {
	var perr *errors.ProviderError
	if !stderrors.As(err, &perr) || (perr.Kind != errors.KindNotFound && perr.Kind != errors.KindForbidden) {
		return err
	}

	found, listErr := s.client.ListTables(ctx, baseID)
	if listErr != nil || len(found) == 0 {
		return err
	}

	s.logger.Warn("Required table not found", map[string]interface{}{
		"baseId": baseID,
		"table":  table,
		"found":  found,
	})
	return &errors.ProviderError{
		Provider:     errors.ProviderAirtable,
		Kind:         errors.KindNotFound,
		Status:       perr.Status,
		ProviderCode: perr.ProviderCode,
		Details:      fmt.Sprintf("table %q not found in base; found tables: %s", table, strings.Join(found, ", ")),
		Err:          err,
	}
}

// seed writes one record using only the fields that exist in the table,
// spelled the way the base spells them.
func (s *Service) seed(ctx context.Context, baseID, table string, existing []string, cfg models.BuildConfig) SeedOutcome {
	ctx, span := observability.StartSpan(ctx, "airtable.seed_sample")

	values := map[string]interface{}{}
	for name, value := range schema.SampleValues(cfg, s.now()) {
		actual, ok := schema.Resolve(existing, name)
		if !ok {
			continue
		}
		if t, isTime := value.(time.Time); isTime {
			value = t.Format(dateLayout)
		}
		values[actual] = value
	}

	if len(values) == 0 {
		err := fmt.Errorf("no tracker fields exist in table %q", table)
		observability.EndSpan(span, err)
		return SeedOutcome{Err: err}
	}

	rec, err := s.client.CreateRecord(ctx, baseID, table, values)
	observability.EndSpan(span, err)
	if err != nil {
		return SeedOutcome{Err: err}
	}
	return SeedOutcome{RecordID: rec.ID}
}

// TestConnection probes the tracker table in the base.
func (s *Service) TestConnection(ctx context.Context, baseID string) (*ConnectionOutput, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.test_connection")
	table := s.client.TableName()
	err := s.client.TestConnection(ctx, baseID)
	if err != nil {
		err = s.connectionFailure(ctx, baseID, table, err)
	}
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &ConnectionOutput{Connected: true, BaseID: baseID, Table: table}, nil
}
