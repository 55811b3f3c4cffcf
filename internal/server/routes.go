package server

import (
	"encoding/json"
	"net/http"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/validation"
	baseintrospection "session-provisioner/internal/diagnostics/base-introspection"
	connectiontest "session-provisioner/internal/diagnostics/connection-test"
	schemapreview "session-provisioner/internal/diagnostics/schema-preview"
	airtablebase "session-provisioner/internal/provisioning/airtable-base"
	notiondatabase "session-provisioner/internal/provisioning/notion-database"
	"session-provisioner/pkg/registry"
)

// Registry version published by GET /api/endpoints.
const RegistryVersion = "1.0.0"

// Limiter names, also used as metric labels.
const (
	GeneralLimiter      = "general"
	ProvisioningLimiter = "provisioning"
)

const (
	HealthPath    = "/health"
	ReadyPath     = "/ready"
	MetricsPath   = "/metrics"
	EndpointsPath = "/api/endpoints"
)

// UnlimitedPaths bypass the general rate limiter.
var UnlimitedPaths = []string{HealthPath, ReadyPath, MetricsPath}

var pipelineErrors = []string{
	string(errors.ErrCodeInvalidContentType),
	string(errors.ErrCodeRequestTooLarge),
	string(errors.ErrCodeSecurityViolation),
	string(errors.ErrCodeRateLimitExceeded),
	string(errors.ErrCodeInternal),
}

func providerErrors(provider errors.ErrorCode, extra ...errors.ErrorCode) []string {
	codes := []errors.ErrorCode{
		errors.ErrCodeValidation,
		errors.ErrCodeUnauthorized,
		errors.ErrCodeForbidden,
		errors.ErrCodeNotFound,
		provider,
	}
	codes = append(codes, extra...)
	out := make([]string, 0, len(codes)+len(pipelineErrors))
	for _, c := range codes {
		out = append(out, string(c))
	}
	return append(out, pipelineErrors...)
}

// Endpoints describes every route the server mounts, in mount order.
func Endpoints() []registry.Endpoint {
	return []registry.Endpoint{
		{
			ID:           "provision-notion",
			Method:       http.MethodPost,
			Path:         notiondatabase.Route,
			DisplayName:  "Provision Notion database",
			Description:  "Creates a chat-session tracker database under a Notion page and seeds one sample row",
			Category:     "provisioning",
			RateLimits:   []string{GeneralLimiter, ProvisioningLimiter},
			InputSchema:  schemaMap(notiondatabase.GetInputSchema()),
			OutputSchema: schemaMap(notiondatabase.GetOutputSchema()),
			ErrorCodes:   providerErrors(errors.ErrCodeNotion, errors.ErrCodeUnprocessable, errors.ErrCodeProvisioningRateLimitExceeded),
			Tags:         []string{"notion"},
		},
		{
			ID:           "provision-airtable",
			Method:       http.MethodPost,
			Path:         airtablebase.Route,
			DisplayName:  "Validate Airtable base",
			Description:  "Checks an Airtable base against the tracker field checklist and optionally seeds a sample record",
			Category:     "provisioning",
			RateLimits:   []string{GeneralLimiter, ProvisioningLimiter},
			InputSchema:  schemaMap(airtablebase.GetInputSchema()),
			OutputSchema: schemaMap(airtablebase.GetOutputSchema()),
			ErrorCodes:   providerErrors(errors.ErrCodeAirtable, errors.ErrCodeProvisioningRateLimitExceeded),
			Tags:         []string{"airtable"},
		},
		{
			ID:          "test-notion",
			Method:      http.MethodGet,
			Path:        connectiontest.NotionRoute,
			DisplayName: "Test Notion connection",
			Description: "Reads a page to confirm the integration token can reach it",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(connectiontest.GetPageParamSchema()),
			ErrorCodes:  providerErrors(errors.ErrCodeNotion),
			Tags:        []string{"notion"},
		},
		{
			ID:          "test-airtable",
			Method:      http.MethodGet,
			Path:        connectiontest.AirtableRoute,
			DisplayName: "Test Airtable connection",
			Description: "Probes the tracker table in a base",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(connectiontest.GetBaseParamSchema()),
			ErrorCodes:  providerErrors(errors.ErrCodeAirtable),
			Tags:        []string{"airtable"},
		},
		{
			ID:          "list-airtable-tables",
			Method:      http.MethodGet,
			Path:        baseintrospection.TablesRoute,
			DisplayName: "List Airtable tables",
			Description: "Probes known table names; the result is approximate",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(baseintrospection.GetParamSchema()),
			ErrorCodes:  providerErrors(errors.ErrCodeAirtable),
			Tags:        []string{"airtable"},
		},
		{
			ID:          "list-airtable-fields",
			Method:      http.MethodGet,
			Path:        baseintrospection.FieldsRoute,
			DisplayName: "List Airtable fields",
			Description: "Returns the field names of one sampled record",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(baseintrospection.GetParamSchema()),
			ErrorCodes:  providerErrors(errors.ErrCodeAirtable),
			Tags:        []string{"airtable"},
		},
		{
			ID:          "update-airtable-record",
			Method:      http.MethodPatch,
			Path:        baseintrospection.RecordRoute,
			DisplayName: "Update Airtable record",
			Description: "Patches fields on a tracker record",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(baseintrospection.GetUpdateSchema()),
			ErrorCodes:  providerErrors(errors.ErrCodeAirtable, errors.ErrCodeUnprocessable),
			Tags:        []string{"airtable"},
		},
		{
			ID:          "delete-airtable-record",
			Method:      http.MethodDelete,
			Path:        baseintrospection.RecordRoute,
			DisplayName: "Delete Airtable record",
			Description: "Removes a tracker record such as the seeded sample",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			ErrorCodes:  providerErrors(errors.ErrCodeAirtable),
			Tags:        []string{"airtable"},
		},
		{
			ID:          "schema-preview",
			Method:      http.MethodPost,
			Path:        schemapreview.Route,
			DisplayName: "Preview schema",
			Description: "Returns the Notion schema or Airtable checklist for a configuration without calling a provider",
			Category:    "diagnostics",
			RateLimits:  []string{GeneralLimiter},
			InputSchema: schemaMap(schemapreview.GetInputSchema()),
			ErrorCodes:  []string{string(errors.ErrCodeValidation)},
		},
		{
			ID:          "endpoints",
			Method:      http.MethodGet,
			Path:        EndpointsPath,
			DisplayName: "Endpoint registry",
			Description: "Lists every endpoint with its schemas and error codes",
			Category:    "operations",
			RateLimits:  []string{GeneralLimiter},
			ErrorCodes:  []string{},
		},
		{ID: "health", Method: http.MethodGet, Path: HealthPath, DisplayName: "Liveness", Category: "operations", RateLimits: []string{}, ErrorCodes: []string{}},
		{ID: "ready", Method: http.MethodGet, Path: ReadyPath, DisplayName: "Readiness", Description: "Fails while the rate-limit store is unreachable", Category: "operations", RateLimits: []string{}, ErrorCodes: []string{}},
		{ID: "metrics", Method: http.MethodGet, Path: MetricsPath, DisplayName: "Prometheus metrics", Category: "operations", RateLimits: []string{}, ErrorCodes: []string{}},
	}
}

func schemaMap(s validation.JSONSchema) map[string]interface{} {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func isProvisioning(e registry.Endpoint) bool {
	for _, name := range e.RateLimits {
		if name == ProvisioningLimiter {
			return true
		}
	}
	return false
}
