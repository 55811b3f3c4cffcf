package airtablebase

import (
	"context"
	"time"

	"session-provisioner/internal/common/airtable"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/models"
)

type Input struct {
	BaseID     string              `json:"baseId"`
	SeedSample bool                `json:"seedSample,omitempty"`
	Config     *models.BuildConfig `json:"config,omitempty"`
}

type Output struct {
	Valid                 bool     `json:"valid"`
	URL                   string   `json:"url"`
	Table                 string   `json:"table"`
	Fields                []string `json:"fields"`
	RecordCount           int      `json:"recordCount"`
	RecordCountCapped     bool     `json:"recordCountCapped"`
	MissingFields         []string `json:"missingFields"`
	MissingOptionalFields []string `json:"missingOptionalFields"`
	SampleRecordID        string   `json:"sampleRecordId,omitempty"`
	Warnings              []string `json:"warnings"`
}

// ConnectionOutput answers GET /api/airtable/test/:baseId.
type ConnectionOutput struct {
	Connected bool   `json:"connected"`
	BaseID    string `json:"baseId"`
	Table     string `json:"table"`
}

// SeedOutcome reports the optional sample record step. A non-nil Err never
// fails validation.
type SeedOutcome struct {
	RecordID string
	Err      error
}

// AirtableClient is the subset of *airtable.Client the service uses.
type AirtableClient interface {
	TableName() string
	TestConnection(ctx context.Context, baseID string) error
	ListTables(ctx context.Context, baseID string) ([]string, error)
	GetFieldNames(ctx context.Context, baseID, table string) ([]string, bool, error)
	CountRecords(ctx context.Context, baseID, table string) (airtable.RecordCount, error)
	CreateRecord(ctx context.Context, baseID, table string, fields map[string]interface{}) (*airtable.Record, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Client        AirtableClient
	Observability *observability.Observability
	Now           func() time.Time
}
