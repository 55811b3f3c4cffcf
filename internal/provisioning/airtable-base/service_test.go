package airtablebase

import (
	"context"
	"testing"
	"time"

	"session-provisioner/internal/common/airtable"
	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	baseID    = "appABCDEFGHIJKLMN"
	tableName = "Chat Sessions"
)

// ==========================
// Mock Airtable Client
// ==========================

type MockAirtableClient struct {
	mock.Mock
}

func (m *MockAirtableClient) TableName() string {
	return tableName
}

func (m *MockAirtableClient) TestConnection(ctx context.Context, baseID string) error {
	return m.Called(ctx, baseID).Error(0)
}

func (m *MockAirtableClient) ListTables(ctx context.Context, baseID string) ([]string, error) {
	args := m.Called(ctx, baseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAirtableClient) GetFieldNames(ctx context.Context, baseID, table string) ([]string, bool, error) {
	args := m.Called(ctx, baseID, table)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *MockAirtableClient) CountRecords(ctx context.Context, baseID, table string) (airtable.RecordCount, error) {
	args := m.Called(ctx, baseID, table)
	return args.Get(0).(airtable.RecordCount), args.Error(1)
}

func (m *MockAirtableClient) CreateRecord(ctx context.Context, baseID, table string, fields map[string]interface{}) (*airtable.Record, error) {
	args := m.Called(ctx, baseID, table, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*airtable.Record), args.Error(1)
}

func newTestService(client AirtableClient) *Service {
	return NewService(ServiceDependencies{
		Logger: logger.NewNoOpLogger(),
		Client: client,
		Now:    func() time.Time { return time.Date(2026, 3, 9, 15, 30, 0, 0, time.UTC) },
	}, DefaultConfig())
}

// every required field except Rating, plus two optional ones
var fieldsWithoutRating = []string{"Date", "Duration", "Platform", "Status", "Summary", "Tags", "Title"}

func analyticsTags() *models.BuildConfig {
	return &models.BuildConfig{
		Platform:   models.PlatformChatGPT,
		Priorities: []models.Priority{models.PriorityAnalytics},
		Features:   []models.Feature{models.FeatureTags},
	}
}

// ==========================
// Execute Tests
// ==========================

func TestService_Execute_MissingRatingIsAWarning(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).Return(fieldsWithoutRating, true, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{Count: 3}, nil)

	out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID, Config: analyticsTags()})
	require.NoError(t, err)

	assert.True(t, out.Valid)
	assert.Equal(t, "https://airtable.com/"+baseID, out.URL)
	assert.Equal(t, tableName, out.Table)
	assert.Equal(t, 3, out.RecordCount)
	assert.Equal(t, []string{"Rating"}, out.MissingFields)
	assert.Equal(t, []string{"Priority", "Message Count"}, out.MissingOptionalFields)
	assert.Equal(t, []string{
		"Missing recommended fields: Rating",
		"Missing optional fields for selected features: Priority, Message Count",
	}, out.Warnings)
	assert.Empty(t, out.SampleRecordID)
	client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_WithoutConfigChecksRequiredOnly(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).
		Return([]string{"title", " Date", "Platform", "Status", "Summary", "Rating"}, true, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{Count: 100, Capped: true}, nil)

	out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID})
	require.NoError(t, err)

	assert.Empty(t, out.MissingFields)
	assert.Empty(t, out.MissingOptionalFields)
	assert.Empty(t, out.Warnings)
	assert.True(t, out.RecordCountCapped)
}

func TestService_Execute_IsIdempotent(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).Return(fieldsWithoutRating, true, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{Count: 5}, nil)

	svc := newTestService(client)
	first, err := svc.Execute(context.Background(), &Input{BaseID: baseID, Config: analyticsTags()})
	require.NoError(t, err)
	second, err := svc.Execute(context.Background(), &Input{BaseID: baseID, Config: analyticsTags()})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_Execute_SeedsExistingFieldsOnly(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).
		Return([]string{"date", "Platform", "Title"}, true, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{Count: 2}, nil)
	client.On("CreateRecord", mock.Anything, baseID, tableName, map[string]interface{}{
		"date":     "2026-03-09",
		"Platform": "ChatGPT",
		"Title":    "Sample: Planning my week with ChatGPT",
	}).Return(&airtable.Record{ID: "recSAMPLE00000001"}, nil)

	out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID, SeedSample: true, Config: analyticsTags()})
	require.NoError(t, err)

	assert.Equal(t, "recSAMPLE00000001", out.SampleRecordID)
	assert.Equal(t, 3, out.RecordCount)
	client.AssertExpectations(t)
}

func TestService_Execute_SeedFailureKeepsResult(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).Return(fieldsWithoutRating, true, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{Count: 1}, nil)
	client.On("CreateRecord", mock.Anything, baseID, tableName, mock.Anything).
		Return(nil, &errors.ProviderError{Provider: errors.ProviderAirtable, Kind: errors.KindUnprocessable, Status: 422})

	out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID, SeedSample: true})
	require.NoError(t, err)

	assert.True(t, out.Valid)
	assert.Empty(t, out.SampleRecordID)
	assert.Equal(t, 1, out.RecordCount)
	assert.Contains(t, out.Warnings, "Sample record could not be created; the base is still valid")
}

func TestService_Execute_EmptyTable(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)
	client.On("GetFieldNames", mock.Anything, baseID, tableName).Return([]string{}, false, nil)
	client.On("CountRecords", mock.Anything, baseID, tableName).Return(airtable.RecordCount{}, nil)

	out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID, SeedSample: true})
	require.NoError(t, err)

	assert.Empty(t, out.MissingFields)
	assert.Len(t, out.Warnings, 2)
	client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_ConnectionFailures(t *testing.T) {
	unauthorized := &errors.ProviderError{Provider: errors.ProviderAirtable, Kind: errors.KindUnauthorized, Status: 401}
	notFound := &errors.ProviderError{Provider: errors.ProviderAirtable, Kind: errors.KindNotFound, Status: 404, ProviderCode: "TABLE_NOT_FOUND"}

	tests := []struct {
		name        string
		probeErr    error
		tables      []string
		listErr     error
		wantSame    bool
		wantDetails string
	}{
		{
			name:     "bad token is returned as is",
			probeErr: unauthorized,
			wantSame: true,
		},
		{
			name:        "missing table lists the tables that exist",
			probeErr:    notFound,
			tables:      []string{"Table 1", "Sessions"},
			wantDetails: `table "Chat Sessions" not found in base; found tables: Table 1, Sessions`,
		},
		{
			name:     "unreachable base keeps the probe error",
			probeErr: notFound,
			tables:   []string{},
			wantSame: true,
		},
		{
			name:     "listing failure keeps the probe error",
			probeErr: notFound,
			listErr:  unauthorized,
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockAirtableClient)
			client.On("TestConnection", mock.Anything, baseID).Return(tt.probeErr)
			if tt.tables != nil || tt.listErr != nil {
				client.On("ListTables", mock.Anything, baseID).Return(tt.tables, tt.listErr)
			}

			out, err := newTestService(client).Execute(context.Background(), &Input{BaseID: baseID})
			assert.Nil(t, out)
			if tt.wantSame {
				assert.Same(t, tt.probeErr, err)
			} else {
				var perr *errors.ProviderError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, errors.KindNotFound, perr.Kind)
				assert.Equal(t, tt.wantDetails, perr.Details)
				assert.Equal(t, errors.ErrCodeNotFound, perr.ToStandard().Code)
			}
			client.AssertNotCalled(t, "GetFieldNames", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Execute_RejectsUnknownConfigValues(t *testing.T) {
	client := new(MockAirtableClient)
	_, err := newTestService(client).Execute(context.Background(), &Input{
		BaseID: baseID,
		Config: &models.BuildConfig{Features: []models.Feature{"voice"}},
	})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeValidation, stdErr.Code)
	client.AssertNotCalled(t, "TestConnection", mock.Anything, mock.Anything)
}

// ==========================
// TestConnection Tests
// ==========================

func TestService_TestConnection(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("TestConnection", mock.Anything, baseID).Return(nil)

	out, err := newTestService(client).TestConnection(context.Background(), baseID)
	require.NoError(t, err)
	assert.Equal(t, &ConnectionOutput{Connected: true, BaseID: baseID, Table: tableName}, out)
}
