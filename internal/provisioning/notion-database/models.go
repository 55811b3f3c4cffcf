package notiondatabase

import (
	"context"
	"time"

	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/notion"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/models"
	"session-provisioner/internal/schema"
)

type Input struct {
	ParentPageID  string             `json:"parentPageId"`
	Config        models.BuildConfig `json:"config"`
	DatabaseTitle string             `json:"databaseTitle,omitempty"`
}

type Output struct {
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Properties   map[string]string `json:"properties"`
	Views        []string          `json:"views"`
	SamplePageID string            `json:"samplePageId,omitempty"`
	Warnings     []string          `json:"warnings"`
}

// ConnectionOutput answers GET /api/notion/test/:pageId.
type ConnectionOutput struct {
	Connected bool   `json:"connected"`
	PageID    string `json:"pageId"`
	URL       string `json:"url,omitempty"`
}

// SeedOutcome reports the best-effort sample page step. A non-nil Err
// never fails the provisioning run.
type SeedOutcome struct {
	RecordID string
	Err      error
}

// NotionClient is the subset of *notion.Client the service uses.
type NotionClient interface {
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	TestConnection(ctx context.Context, pageID string) (*notion.Page, error)
	CreateDatabase(ctx context.Context, parentPageID, title string, fields []schema.FieldDef) (*notion.Database, error)
	CreatePage(ctx context.Context, databaseID string, fields []schema.FieldDef, values map[string]interface{}) (*notion.Page, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Client        NotionClient
	Observability *observability.Observability
	Now           func() time.Time
}
