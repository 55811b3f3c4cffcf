package baseintrospection

import (
	"fmt"
	"net/http"

	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/middleware"
	"session-provisioner/internal/common/validation"
	airtablebase "session-provisioner/internal/provisioning/airtable-base"

	"github.com/gin-gonic/gin"
)

const (
	TablesRoute = "/api/airtable/bases/:baseId/tables"
	FieldsRoute = "/api/airtable/bases/:baseId/tables/:table/fields"
	RecordRoute = "/api/airtable/bases/:baseId/records/:recordId"

	RecordIDPattern = `^rec[a-zA-Z0-9]{14}$`
)

type Handler struct {
	service         *Service
	paramValidator  *validation.Validator
	updateValidator *validation.Validator
}

func NewHandler(log logger.Logger, client AirtableClient) (*Handler, error) {
	if client == nil {
		return nil, fmt.Errorf("base-introspection requires an Airtable client")
	}
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	paramValidator, err := validation.Compile(GetParamSchema())
	if err != nil {
		return nil, fmt.Errorf("base-introspection param schema: %w", err)
	}
	updateValidator, err := validation.Compile(GetUpdateSchema())
	if err != nil {
		return nil, fmt.Errorf("base-introspection update schema: %w", err)
	}

	return &Handler{
		service:         NewService(log, client),
		paramValidator:  paramValidator,
		updateValidator: updateValidator,
	}, nil
}

// ListTables handles GET /api/airtable/bases/:baseId/tables.
func (h *Handler) ListTables(c *gin.Context) {
	if !h.validParams(c) {
		return
	}
	out, err := h.service.ListTables(c.Request.Context(), c.Param("baseId"))
	h.respond(c, out, err)
}

// ListFields handles GET /api/airtable/bases/:baseId/tables/:table/fields.
func (h *Handler) ListFields(c *gin.Context) {
	if !h.validParams(c) {
		return
	}
	out, err := h.service.Fields(c.Request.Context(), c.Param("baseId"), c.Param("table"))
	h.respond(c, out, err)
}

// UpdateRecord handles PATCH /api/airtable/bases/:baseId/records/:recordId.
func (h *Handler) UpdateRecord(c *gin.Context) {
	if !h.validParams(c) {
		return
	}

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

	var req UpdateRequest
	payload, err := validation.DecodeAndValidate(body, h.updateValidator, &req)
	if payload != nil {
		middleware.SetPayload(c, payload)
	}
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	out, err := h.service.UpdateRecord(c.Request.Context(), c.Param("baseId"), c.Param("recordId"), req.Fields)
	h.respond(c, out, err)
}

// DeleteRecord handles DELETE /api/airtable/bases/:baseId/records/:recordId.
func (h *Handler) DeleteRecord(c *gin.Context) {
	if !h.validParams(c) {
		return
	}
	out, err := h.service.DeleteRecord(c.Request.Context(), c.Param("baseId"), c.Param("recordId"))
	h.respond(c, out, err)
}

// validParams checks every path parameter the route declares.
func (h *Handler) validParams(c *gin.Context) bool {
	doc := map[string]interface{}{}
	for _, p := range c.Params {
		doc[p.Key] = p.Value
	}
	if err := validation.ValidateDocument(doc, h.paramValidator); err != nil {
		_ = c.Error(err)
		c.Abort()
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, out interface{}, err error) {
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, out)
}

type UpdateRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

func GetParamSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"baseId"},
		Properties: map[string]validation.Property{
			"baseId": {
				Type:    "string",
				Pattern: validation.StringPtr(airtablebase.BaseIDPattern),
				Message: airtablebase.BaseIDMessage,
			},
			"table": {
				Type:      "string",
				MinLength: intPtr(1),
				MaxLength: intPtr(100),
			},
			"recordId": {
				Type:    "string",
				Pattern: validation.StringPtr(RecordIDPattern),
				Message: "must be an Airtable record id: rec followed by 14 letters or digits",
			},
		},
	}
}

func GetUpdateSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"fields"},
		Properties: map[string]validation.Property{
			"fields": {
				Type:          "object",
				Description:   "Field name to new value; Airtable typecasts the values",
				MinProperties: intPtr(1),
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
