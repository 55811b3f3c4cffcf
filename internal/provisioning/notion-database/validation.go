package notiondatabase

import (
	"session-provisioner/internal/common/validation"
	"session-provisioner/internal/models"
)

const PageIDPattern = `^[a-fA-F0-9]{32}$`

// PageIDMessage explains PageIDPattern violations.
const PageIDMessage = "must be a 32-character hexadecimal Notion page id"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"parentPageId", "config"},
		Properties: map[string]validation.Property{
			"parentPageId": {
				Type:        "string",
				Description: "Notion page the database is created under",
				Pattern:     validation.StringPtr(PageIDPattern),
				Message:     PageIDMessage,
			},
			"config": models.ConfigSchema(),
			"databaseTitle": {
				Type:        "string",
				Description: "Title of the new database",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"id", "url", "properties", "views"},
		Properties: map[string]validation.Property{
			"id":           {Type: "string", Description: "Created database id"},
			"url":          {Type: "string", Description: "Created database URL"},
			"properties":   {Type: "object", Description: "Property name to Notion property type"},
			"views":        {Type: "array", Description: "Suggested views, created manually in Notion", Items: &validation.Property{Type: "string"}},
			"samplePageId": {Type: "string", Description: "Sample row id, absent when seeding failed or was skipped"},
			"warnings":     {Type: "array", Items: &validation.Property{Type: "string"}},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
