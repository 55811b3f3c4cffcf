package schemapreview

import (
	"fmt"
	"net/http"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/middleware"
	"session-provisioner/internal/common/validation"
	"session-provisioner/internal/models"

	"github.com/gin-gonic/gin"
)

const Route = "/api/schema/preview"

type Handler struct {
	inputValidator *validation.Validator
}

func NewHandler() (*Handler, error) {
	v, err := validation.Compile(GetInputSchema())
	if err != nil {
		return nil, fmt.Errorf("schema-preview input schema: %w", err)
	}
	return &Handler{inputValidator: v}, nil
}

// Preview handles POST /api/schema/preview.
func (h *Handler) Preview(c *gin.Context) {
	body := middleware.GetRawBody(c)
	if body == nil {
		data, err := c.GetRawData()
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		body = data
	}

	var input Input
	payload, err := validation.DecodeAndValidate(body, h.inputValidator, &input)
	if payload != nil {
		middleware.SetPayload(c, payload)
	}
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	out, err := Preview(input)
	if err != nil {
		_ = c.Error(errors.NewValidationError(err.Error(), nil))
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"provider", "config"},
		Properties: map[string]validation.Property{
			"provider": {
				Type:        "string",
				Description: "Target store",
				Enum:        []string{string(ProviderNotion), string(ProviderAirtable)},
			},
			"config": models.ConfigSchema(),
		},
		AdditionalProperties: false,
	}
}
