package notiondatabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

func (m *MockService) TestConnection(ctx context.Context, pageID string) (*ConnectionOutput, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConnectionOutput), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func newRouter(t *testing.T, svc Provisioner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewNoOpLogger(), Service: svc})
	require.NoError(t, err)

	log := logger.NewNoOpLogger()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(errors.NewErrorHandler(log, false), "/api/provision"))
	r.POST(Route, h.Provision)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) errors.Envelope {
	t.Helper()
	var env errors.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid configuration with service",
			opts:    HandlerOptions{CustomConfig: DefaultConfig(), Service: new(MockService)},
			wantErr: false,
		},
		{
			name:    "valid configuration with client",
			opts:    HandlerOptions{CustomConfig: DefaultConfig(), Client: new(MockNotionClient)},
			wantErr: false,
		},
		{
			name:    "missing client and service",
			opts:    HandlerOptions{CustomConfig: DefaultConfig()},
			wantErr: true,
			errMsg:  "requires a Notion client",
		},
		{
			name:    "invalid timeout",
			opts:    HandlerOptions{CustomConfig: &Config{DatabaseTitle: "x", Timeout: -time.Second}, Service: new(MockService)},
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name:    "empty title",
			opts:    HandlerOptions{CustomConfig: &Config{Timeout: time.Second}, Service: new(MockService)},
			wantErr: true,
			errMsg:  "database_title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := NewHandler(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, handler)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, handler.service)
				assert.NotNil(t, handler.logger)
			}
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(&config.Config{
		Provisioning: config.ProvisioningConfig{
			Notion: config.NotionProvisioningConfig{DatabaseTitle: "AI Sessions", SkipSample: true, Timeout: 5000},
		},
	}, nil)

	assert.Equal(t, "AI Sessions", cfg.DatabaseTitle)
	assert.True(t, cfg.SkipSample)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	assert.Equal(t, DefaultConfig(), createConfigFromAppConfig(nil, nil))
}

// ==========================
// Provision Endpoint Tests
// ==========================

func TestHandler_Provision(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantCode   errors.ErrorCode
		wantFields []string
	}{
		{
			name: "valid request",
			body: `{"parentPageId":"0123456789abcdef0123456789abcdef","config":{"platform":"claude","priorities":["analytics"],"features":["tags"]}}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, mock.MatchedBy(func(in *Input) bool {
					return in.ParentPageID == parentID && len(in.Config.Priorities) == 1
				})).Return(&Output{ID: "db-1", URL: "https://www.notion.so/db1", Properties: map[string]string{"Title": "title"}, Views: []string{"All Sessions"}, Warnings: []string{}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed page id never reaches the service",
			body:       `{"parentPageId":"not-a-page","config":{}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeValidation,
			wantFields: []string{"parentPageId"},
		},
		{
			name:       "every violation is reported",
			body:       `{"parentPageId":"xyz","config":{"platform":"bard","features":["voice"]},"extra":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeValidation,
			wantFields: []string{"config.features[0]", "config.platform", "extra", "parentPageId"},
		},
		{
			name:       "missing config",
			body:       `{"parentPageId":"0123456789abcdef0123456789abcdef"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeValidation,
			wantFields: []string{"config"},
		},
		{
			name:       "malformed json",
			body:       `{"parentPageId":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeValidation,
		},
		{
			name: "provider error is mapped",
			body: `{"parentPageId":"0123456789abcdef0123456789abcdef","config":{}}`,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, mock.Anything).
					Return(nil, &errors.ProviderError{Provider: errors.ProviderNotion, Kind: errors.KindUnauthorized, Status: 401})
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			w := post(newRouter(t, svc), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var out Output
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
				assert.Equal(t, "db-1", out.ID)
			} else {
				env := envelope(t, w)
				assert.Equal(t, tt.wantCode, env.Code)
				assert.Contains(t, env.Details, "requestId: "+env.RequestID)
				if tt.wantFields != nil {
					var got []string
					for _, f := range env.Fields {
						got = append(got, f.Field)
					}
					assert.ElementsMatch(t, tt.wantFields, got)
				}
			}

			if tt.setupMock == nil {
				svc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
			}
			svc.AssertExpectations(t)
		})
	}
}
