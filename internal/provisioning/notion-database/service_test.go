package notiondatabase

import (
	"context"
	"testing"
	"time"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/notion"
	"session-provisioner/internal/models"
	"session-provisioner/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const parentID = "0123456789abcdef0123456789abcdef"

// ==========================
// Mock Notion Client
// ==========================

type MockNotionClient struct {
	mock.Mock
}

func (m *MockNotionClient) GetPage(ctx context.Context, pageID string) (*notion.Page, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Page), args.Error(1)
}

func (m *MockNotionClient) TestConnection(ctx context.Context, pageID string) (*notion.Page, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Page), args.Error(1)
}

func (m *MockNotionClient) CreateDatabase(ctx context.Context, parentPageID, title string, fields []schema.FieldDef) (*notion.Database, error) {
	args := m.Called(ctx, parentPageID, title, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Database), args.Error(1)
}

func (m *MockNotionClient) CreatePage(ctx context.Context, databaseID string, fields []schema.FieldDef, values map[string]interface{}) (*notion.Page, error) {
	args := m.Called(ctx, databaseID, fields, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Page), args.Error(1)
}

func newTestService(client NotionClient, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewService(ServiceDependencies{
		Logger: logger.NewNoOpLogger(),
		Client: client,
		Now:    func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) },
	}, cfg)
}

func analyticsTagsInput() *Input {
	return &Input{
		ParentPageID: parentID,
		Config: models.BuildConfig{
			Platform:   models.PlatformClaude,
			Priorities: []models.Priority{models.PriorityAnalytics},
			Features:   []models.Feature{models.FeatureTags},
		},
	}
}

// ==========================
// Execute Tests
// ==========================

func TestService_Execute_Success(t *testing.T) {
	client := new(MockNotionClient)
	input := analyticsTagsInput()
	want := schema.MapNotion(input.Config)

	client.On("GetPage", mock.Anything, parentID).Return(&notion.Page{ID: parentID}, nil)
	client.On("CreateDatabase", mock.Anything, parentID, "Chat Sessions", want.Fields).
		Return(&notion.Database{ID: "db-1", URL: "https://www.notion.so/db1"}, nil)
	client.On("CreatePage", mock.Anything, "db-1", want.Fields, mock.MatchedBy(func(v map[string]interface{}) bool {
		return v["Platform"] == "Claude"
	})).Return(&notion.Page{ID: "page-1"}, nil)

	out, err := newTestService(client, nil).Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "db-1", out.ID)
	assert.Equal(t, "https://www.notion.so/db1", out.URL)
	assert.Equal(t, "page-1", out.SamplePageID)
	assert.Len(t, out.Properties, 16)
	assert.Equal(t, "multi_select", out.Properties["Tags"])
	assert.Equal(t, []string{"All Sessions", "Recent", "Active", "Analytics Dashboard"}, out.Views)
	assert.Empty(t, out.Warnings)
	client.AssertExpectations(t)
}

func TestService_Execute_ParentFailureAborts(t *testing.T) {
	client := new(MockNotionClient)
	notFound := &errors.ProviderError{Provider: errors.ProviderNotion, Kind: errors.KindNotFound, Status: 404}
	client.On("GetPage", mock.Anything, parentID).Return(nil, notFound)

	out, err := newTestService(client, nil).Execute(context.Background(), analyticsTagsInput())
	assert.Nil(t, out)
	assert.Same(t, notFound, err)
	client.AssertNotCalled(t, "CreateDatabase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_CreateDatabaseFailure(t *testing.T) {
	client := new(MockNotionClient)
	forbidden := &errors.ProviderError{Provider: errors.ProviderNotion, Kind: errors.KindForbidden}
	client.On("GetPage", mock.Anything, parentID).Return(&notion.Page{ID: parentID}, nil)
	client.On("CreateDatabase", mock.Anything, parentID, mock.Anything, mock.Anything).Return(nil, forbidden)

	_, err := newTestService(client, nil).Execute(context.Background(), analyticsTagsInput())
	assert.Same(t, forbidden, err)
	client.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_SeedFailureIsBestEffort(t *testing.T) {
	client := new(MockNotionClient)
	client.On("GetPage", mock.Anything, parentID).Return(&notion.Page{ID: parentID}, nil)
	client.On("CreateDatabase", mock.Anything, parentID, mock.Anything, mock.Anything).
		Return(&notion.Database{ID: "db-2", URL: "https://www.notion.so/db2"}, nil)
	client.On("CreatePage", mock.Anything, "db-2", mock.Anything, mock.Anything).
		Return(nil, &errors.ProviderError{Provider: errors.ProviderNotion, Kind: errors.KindUnprocessable})

	out, err := newTestService(client, nil).Execute(context.Background(), analyticsTagsInput())
	require.NoError(t, err)
	assert.Equal(t, "db-2", out.ID)
	assert.Empty(t, out.SamplePageID)
	assert.Len(t, out.Warnings, 1)
}

func TestService_Execute_SkipSampleAndCustomTitle(t *testing.T) {
	client := new(MockNotionClient)
	client.On("GetPage", mock.Anything, parentID).Return(&notion.Page{ID: parentID}, nil)
	client.On("CreateDatabase", mock.Anything, parentID, "My AI Log", mock.Anything).
		Return(&notion.Database{ID: "db-3"}, nil)

	cfg := DefaultConfig()
	cfg.SkipSample = true
	input := analyticsTagsInput()
	input.DatabaseTitle = "My AI Log"

	out, err := newTestService(client, cfg).Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, out.SamplePageID)
	client.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestService_Execute_RejectsUnknownConfigValues(t *testing.T) {
	client := new(MockNotionClient)
	input := &Input{ParentPageID: parentID, Config: models.BuildConfig{Platform: "bard"}}

	_, err := newTestService(client, nil).Execute(context.Background(), input)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeValidation, stdErr.Code)
	client.AssertNotCalled(t, "GetPage", mock.Anything, mock.Anything)
}

func TestService_TestConnection(t *testing.T) {
	client := new(MockNotionClient)
	client.On("TestConnection", mock.Anything, parentID).Return(&notion.Page{ID: parentID, URL: "https://www.notion.so/p"}, nil)

	out, err := newTestService(client, nil).TestConnection(context.Background(), parentID)
	require.NoError(t, err)
	assert.True(t, out.Connected)
	assert.Equal(t, "https://www.notion.so/p", out.URL)
	client.AssertNotCalled(t, "GetPage", mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}
