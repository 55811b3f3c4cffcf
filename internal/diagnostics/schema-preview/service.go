// Package schemapreview renders the schema a configuration would produce
// without calling either provider.
package schemapreview

import (
	"fmt"

	"session-provisioner/internal/models"
	"session-provisioner/internal/schema"
)

type Provider string

const (
	ProviderNotion   Provider = "notion"
	ProviderAirtable Provider = "airtable"
)

type Input struct {
	Provider Provider           `json:"provider"`
	Config   models.BuildConfig `json:"config"`
}

type Output struct {
	Provider Provider                  `json:"provider"`
	Rules    []string                  `json:"rules"`
	Notion   *schema.NotionSchema      `json:"notion,omitempty"`
	Airtable *schema.AirtableChecklist `json:"airtable,omitempty"`
}

// Preview maps cfg for one provider. It is pure and never fails for a
// config that passes BuildConfig.Validate.
func Preview(input Input) (*Output, error) {
	cfg := input.Config.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := &Output{Provider: input.Provider, Rules: schema.AppliedRules(cfg)}
	switch input.Provider {
	case ProviderNotion:
		def := schema.MapNotion(cfg)
		out.Notion = &def
	case ProviderAirtable:
		checklist := schema.MapAirtable(cfg)
		out.Airtable = &checklist
	default:
		return nil, fmt.Errorf("unknown provider %q", input.Provider)
	}
	return out, nil
}
