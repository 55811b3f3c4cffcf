package airtable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseID = "appABCDEFGHIJKLMN"

type call struct {
	method string
	path   string
	query  string
	body   map[string]interface{}
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]call) {
	t.Helper()
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer patTEST", r.Header.Get("Authorization"))
		c := call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &c.body)
		}
		calls = append(calls, c)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(config.AirtableConfig{
		Token:           "patTEST",
		BaseURL:         srv.URL + "/v0",
		TableName:       "Chat Sessions",
		CandidateTables: []string{"Chat Sessions", "Sessions", "Table 1"},
		Timeout:         2000,
	})
	require.NoError(t, err)
	return client, &calls
}

func write(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ==========================
// Read Tests
// ==========================

func TestClient_TestConnection(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `{"records":[]}`)
	})

	require.NoError(t, c.TestConnection(context.Background(), testBaseID))
	require.Len(t, *calls, 1)
	assert.Equal(t, "/v0/"+testBaseID+"/Chat Sessions", (*calls)[0].path)
	assert.Equal(t, "maxRecords=1", (*calls)[0].query)
}

func TestClient_GetFieldNames(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `{"records":[{"id":"rec1","fields":{"Title":"x","Status":"Active","Date":"2026-01-01"}}]}`)
	})

	names, sampled, err := c.GetFieldNames(context.Background(), testBaseID, "Chat Sessions")
	require.NoError(t, err)
	assert.True(t, sampled)
	assert.Equal(t, []string{"Date", "Status", "Title"}, names)
}

func TestClient_GetFieldNames_EmptyTable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `{"records":[]}`)
	})

	names, sampled, err := c.GetFieldNames(context.Background(), testBaseID, "Chat Sessions")
	require.NoError(t, err)
	assert.False(t, sampled)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestClient_CountRecords(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCount  int
		wantCapped bool
	}{
		{"single page", `{"records":[{"id":"rec1","fields":{}},{"id":"rec2","fields":{}}]}`, 2, false},
		{"more pages", `{"records":[{"id":"rec1","fields":{}}],"offset":"itrNEXT"}`, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				write(w, 200, tt.body)
			})
			count, err := c.CountRecords(context.Background(), testBaseID, "Chat Sessions")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count.Count)
			assert.Equal(t, tt.wantCapped, count.Capped)
			assert.Equal(t, "pageSize=100", (*calls)[0].query)
		})
	}
}

func TestClient_ListTables(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/Chat Sessions"):
			write(w, 200, `{"records":[]}`)
		case strings.HasSuffix(r.URL.Path, "/Sessions"):
			write(w, 404, `{"error":"NOT_FOUND"}`)
		default:
			write(w, 403, `{"error":{"type":"INVALID_PERMISSIONS_OR_MODEL_NOT_FOUND","message":"no"}}`)
		}
	})

	tables, err := c.ListTables(context.Background(), testBaseID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chat Sessions"}, tables)
	assert.Len(t, *calls, 3)
}

func TestClient_ListTables_AbortsOnAuthFailure(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		write(w, 401, `{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`)
	})

	_, err := c.ListTables(context.Background(), testBaseID)
	var perr *errors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.KindUnauthorized, perr.Kind)
	assert.Len(t, *calls, 1)
}

// ==========================
// Write Tests
// ==========================

func TestClient_CreateRecord(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `{"id":"recNEW00000000001","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Title":"Sample"}}`)
	})

	rec, err := c.CreateRecord(context.Background(), testBaseID, "Chat Sessions", map[string]interface{}{"Title": "Sample"})
	require.NoError(t, err)
	assert.Equal(t, "recNEW00000000001", rec.ID)

	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, true, got.body["typecast"])
	assert.Equal(t, "Sample", got.body["fields"].(map[string]interface{})["Title"])
}

func TestClient_UpdateAndDeleteRecord(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			write(w, 200, `{"id":"recABCDEFGHIJKLMN","deleted":true}`)
			return
		}
		write(w, 200, `{"id":"recABCDEFGHIJKLMN","fields":{"Status":"Completed"}}`)
	})

	rec, err := c.UpdateRecord(context.Background(), testBaseID, "Chat Sessions", "recABCDEFGHIJKLMN",
		map[string]interface{}{"Status": "Completed"})
	require.NoError(t, err)
	assert.Equal(t, "Completed", rec.Fields["Status"])

	deleted, err := c.DeleteRecord(context.Background(), testBaseID, "Chat Sessions", "recABCDEFGHIJKLMN")
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, http.MethodPatch, (*calls)[0].method)
	assert.Equal(t, "/v0/"+testBaseID+"/Chat Sessions/recABCDEFGHIJKLMN", (*calls)[0].path)
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
}

// ==========================
// Error Decoding Tests
// ==========================

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind errors.ErrorKind
		wantCode string
	}{
		{"string form", 404, `{"error":"NOT_FOUND"}`, errors.KindNotFound, "NOT_FOUND"},
		{"object form", 422, `{"error":{"type":"UNKNOWN_FIELD_NAME","message":"Unknown field name: \"Mood\""}}`, errors.KindUnprocessable, "UNKNOWN_FIELD_NAME"},
		{"auth", 401, `{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`, errors.KindUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"unknown type uses status", 403, `{"error":{"type":"SOMETHING_NEW","message":"?"}}`, errors.KindForbidden, "SOMETHING_NEW"},
		{"no body", 502, ``, errors.KindProvider, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := decodeError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, tt.wantCode, perr.ProviderCode)
			assert.Equal(t, errors.ProviderAirtable, perr.Provider)
			assert.NotEmpty(t, perr.Details)
		})
	}
}

func TestDecodeError_GenericMapsToAirtableError(t *testing.T) {
	perr := decodeError(500, []byte(`{"error":{"type":"SERVER_ERROR","message":"boom"}}`))
	assert.Equal(t, errors.ErrCodeAirtable, perr.ToStandard().Code)
}
