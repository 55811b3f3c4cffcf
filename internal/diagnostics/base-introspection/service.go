// Package baseintrospection exposes read and cleanup helpers for an Airtable
// base: table discovery, field listing and maintenance of seeded records.
package baseintrospection

import (
	"context"

	"session-provisioner/internal/common/airtable"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

// AirtableClient is the subset of *airtable.Client used here.
type AirtableClient interface {
	TableName() string
	ListTables(ctx context.Context, baseID string) ([]string, error)
	GetFieldNames(ctx context.Context, baseID, table string) ([]string, bool, error)
	UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]interface{}) (*airtable.Record, error)
	DeleteRecord(ctx context.Context, baseID, table, recordID string) (bool, error)
}

type TablesOutput struct {
	BaseID string   `json:"baseId"`
	Tables []string `json:"tables"`
	// Approximate is always true: only known table names are probed.
	Approximate bool `json:"approximate"`
}

type FieldsOutput struct {
	BaseID  string   `json:"baseId"`
	Table   string   `json:"table"`
	Fields  []string `json:"fields"`
	Sampled bool     `json:"sampled"`
}

type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type Service struct {
	logger logger.Logger
	client AirtableClient
}

func NewService(log logger.Logger, client AirtableClient) *Service {
	return &Service{logger: log, client: client}
}

func (s *Service) ListTables(ctx context.Context, baseID string) (*TablesOutput, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.list_tables", attribute.String("airtable.base_id", baseID))
	tables, err := s.client.ListTables(ctx, baseID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &TablesOutput{BaseID: baseID, Tables: tables, Approximate: true}, nil
}

func (s *Service) Fields(ctx context.Context, baseID, table string) (*FieldsOutput, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.list_fields", attribute.String("airtable.base_id", baseID))
	fields, sampled, err := s.client.GetFieldNames(ctx, baseID, table)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &FieldsOutput{BaseID: baseID, Table: table, Fields: fields, Sampled: sampled}, nil
}

// UpdateRecord patches a record in the tracker table.
func (s *Service) UpdateRecord(ctx context.Context, baseID, recordID string, fields map[string]interface{}) (*airtable.Record, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.update_record", attribute.String("airtable.record_id", recordID))
	rec, err := s.client.UpdateRecord(ctx, baseID, s.client.TableName(), recordID, fields)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Airtable record updated", map[string]interface{}{"baseId": baseID, "recordId": recordID, "fields": len(fields)})
	return rec, nil
}

// DeleteRecord removes a record from the tracker table, typically the
// sample created during provisioning.
func (s *Service) DeleteRecord(ctx context.Context, baseID, recordID string) (*DeleteOutput, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.delete_record", attribute.String("airtable.record_id", recordID))
	deleted, err := s.client.DeleteRecord(ctx, baseID, s.client.TableName(), recordID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Airtable record deleted", map[string]interface{}{"baseId": baseID, "recordId": recordID})
	return &DeleteOutput{ID: recordID, Deleted: deleted}, nil
}
