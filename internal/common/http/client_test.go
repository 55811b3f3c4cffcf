package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"session-provisioner/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_MapsTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"object":"error","code":"rate_limited"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{Provider: errors.ProviderNotion, Timeout: time.Second})
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/pages/x", nil)
	_, err = c.HTTPClient().Do(req)
	require.Error(t, err)

	var perr *errors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.KindRateLimited, perr.Kind)
	assert.Equal(t, 7, perr.RetryAfter)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
}

func TestTransport_LocalBudgetFailsFast(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Options{Provider: errors.ProviderAirtable, RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.HTTPClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err = c.HTTPClient().Do(req)
	var perr *errors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.KindRateLimited, perr.Kind)
	assert.Equal(t, 1, hits)
}

func TestTransport_BaseURLRewrite(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(Options{Provider: errors.ProviderNotion, BaseURL: srv.URL + "/proxy"})
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://api.notion.com/v1/databases", nil)
	resp, err := c.HTTPClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/proxy/v1/databases", gotPath)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"empty", "", 1},
		{"seconds", "30", 30},
		{"zero", "0", 1},
		{"garbage", "soon", 1},
		{"http date", now.Add(10 * time.Second).Format(http.TimeFormat), 10},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRetryAfter(tt.value, now))
		})
	}
}
