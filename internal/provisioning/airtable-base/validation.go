package airtablebase

import (
	"session-provisioner/internal/common/validation"
	"session-provisioner/internal/models"
)

const BaseIDPattern = `^app[a-zA-Z0-9]{14}$`

// BaseIDMessage explains BaseIDPattern violations.
const BaseIDMessage = "must be an Airtable base id: app followed by 14 letters or digits"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"baseId"},
		Properties: map[string]validation.Property{
			"baseId": {
				Type:        "string",
				Description: "Airtable base to validate",
				Pattern:     validation.StringPtr(BaseIDPattern),
				Message:     BaseIDMessage,
			},
			"seedSample": {
				Type:        "boolean",
				Description: "Create one sample record after validation",
			},
			"config": models.ConfigSchema(),
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"valid", "url", "table", "fields", "recordCount", "missingFields", "warnings"},
		Properties: map[string]validation.Property{
			"valid":                 {Type: "boolean", Description: "Base is reachable and the table exists"},
			"url":                   {Type: "string", Description: "Link to the base"},
			"table":                 {Type: "string", Description: "Validated table name"},
			"fields":                {Type: "array", Description: "Field names observed on a sampled record", Items: &validation.Property{Type: "string"}},
			"recordCount":           {Type: "integer", Description: "Records on the first page, at most 100"},
			"recordCountCapped":     {Type: "boolean", Description: "More records exist beyond recordCount"},
			"missingFields":         {Type: "array", Items: &validation.Property{Type: "string"}},
			"missingOptionalFields": {Type: "array", Items: &validation.Property{Type: "string"}},
			"sampleRecordId":        {Type: "string", Description: "Seeded record id"},
			"warnings":              {Type: "array", Items: &validation.Property{Type: "string"}},
		},
		AdditionalProperties: false,
	}
}
