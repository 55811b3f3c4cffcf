// Package connectiontest answers token and id checks for both providers
// without touching any data.
package connectiontest

import (
	"context"
	"fmt"
	"net/http"

	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/validation"
	airtablebase "session-provisioner/internal/provisioning/airtable-base"
	notiondatabase "session-provisioner/internal/provisioning/notion-database"

	"github.com/gin-gonic/gin"
)

const (
	NotionRoute   = "/api/notion/test/:pageId"
	AirtableRoute = "/api/airtable/test/:baseId"
)

type NotionTester interface {
	TestConnection(ctx context.Context, pageID string) (*notiondatabase.ConnectionOutput, error)
}

type AirtableTester interface {
	TestConnection(ctx context.Context, baseID string) (*airtablebase.ConnectionOutput, error)
}

type Handler struct {
	logger        logger.Logger
	notion        NotionTester
	airtable      AirtableTester
	pageValidator *validation.Validator
	baseValidator *validation.Validator
}

func NewHandler(log logger.Logger, notion NotionTester, airtable AirtableTester) (*Handler, error) {
	if notion == nil || airtable == nil {
		return nil, fmt.Errorf("connection-test requires both provider testers")
	}
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	pageValidator, err := validation.Compile(GetPageParamSchema())
	if err != nil {
		return nil, fmt.Errorf("connection-test page schema: %w", err)
	}
	baseValidator, err := validation.Compile(GetBaseParamSchema())
	if err != nil {
		return nil, fmt.Errorf("connection-test base schema: %w", err)
	}

	return &Handler{
		logger:        log,
		notion:        notion,
		airtable:      airtable,
		pageValidator: pageValidator,
		baseValidator: baseValidator,
	}, nil
}

// TestNotion handles GET /api/notion/test/:pageId.
func (h *Handler) TestNotion(c *gin.Context) {
	pageID := c.Param("pageId")
	if err := validation.ValidateDocument(map[string]interface{}{"pageId": pageID}, h.pageValidator); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	out, err := h.notion.TestConnection(c.Request.Context(), pageID)
	if err != nil {
		h.logger.Warn("Notion connection test failed", map[string]interface{}{"pageId": pageID, "error": err.Error()})
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, out)
}

// TestAirtable handles GET /api/airtable/test/:baseId.
func (h *Handler) TestAirtable(c *gin.Context) {
	baseID := c.Param("baseId")
	if err := validation.ValidateDocument(map[string]interface{}{"baseId": baseID}, h.baseValidator); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	out, err := h.airtable.TestConnection(c.Request.Context(), baseID)
	if err != nil {
		h.logger.Warn("Airtable connection test failed", map[string]interface{}{"baseId": baseID, "error": err.Error()})
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetPageParamSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"pageId"},
		Properties: map[string]validation.Property{
			"pageId": {
				Type:    "string",
				Pattern: validation.StringPtr(notiondatabase.PageIDPattern),
				Message: notiondatabase.PageIDMessage,
			},
		},
	}
}

func GetBaseParamSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"baseId"},
		Properties: map[string]validation.Property{
			"baseId": {
				Type:    "string",
				Pattern: validation.StringPtr(airtablebase.BaseIDPattern),
				Message: airtablebase.BaseIDMessage,
			},
		},
	}
}
