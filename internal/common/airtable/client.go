// Package airtable is a minimal client for the Airtable REST API (v0).
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/errors"
	commonhttp "session-provisioner/internal/common/http"
)

const (
	DefaultBaseURL = "https://api.airtable.com/v0"
	// PageSize is the largest page the list endpoint returns.
	PageSize = 100
)

// Record is one Airtable row.
type Record struct {
	ID          string                 `json:"id"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// RecordCount is the size of the first result page.
type RecordCount struct {
	Count  int  `json:"count"`
	Capped bool `json:"capped"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type Client struct {
	token      string
	baseURL    string
	tableName  string
	candidates []string
	httpClient *http.Client
}

func NewClient(cfg config.AirtableConfig) (*Client, error) {
	hc, err := commonhttp.NewClient(commonhttp.Options{
		Provider:          errors.ProviderAirtable,
		Timeout:           config.GetDuration(cfg.Timeout),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    baseURL,
		tableName:  cfg.TableName,
		candidates: cfg.CandidateTables,
		httpClient: hc.HTTPClient(),
	}, nil
}

// TableName is the table provisioning validates.
func (c *Client) TableName() string {
	return c.tableName
}

// TestConnection reads one record from the well-known table.
func (c *Client) TestConnection(ctx context.Context, baseID string) error {
	_, err := c.list(ctx, baseID, c.tableName, url.Values{"maxRecords": {"1"}})
	return err
}

// ListTables probes the candidate table names and returns those that exist.
// The records API cannot enumerate tables, so the result is approximate.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]string, error) {
	found := []string{}
	for _, name := range c.candidates {
		_, err := c.list(ctx, baseID, name, url.Values{"maxRecords": {"1"}})
		if err == nil {
			found = append(found, name)
			continue
		}
		var perr *errors.ProviderError
		if stderrors.As(err, &perr) && (perr.Kind == errors.KindNotFound || perr.Kind == errors.KindForbidden) {
			continue
		}
		return nil, err
	}
	return found, nil
}

// GetFieldNames samples one record and returns its field names, sorted.
// Airtable omits empty cells, so an empty table yields no names and
// sampled reports false.
func (c *Client) GetFieldNames(ctx context.Context, baseID, table string) (names []string, sampled bool, err error) {
	resp, err := c.list(ctx, baseID, table, url.Values{"maxRecords": {"1"}})
	if err != nil {
		return nil, false, err
	}
	names = []string{}
	if len(resp.Records) == 0 {
		return names, false, nil
	}
	for name := range resp.Records[0].Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true, nil
}

// CountRecords counts the first page only. Capped is set when more pages exist.
func (c *Client) CountRecords(ctx context.Context, baseID, table string) (RecordCount, error) {
	resp, err := c.list(ctx, baseID, table, url.Values{"pageSize": {strconv.Itoa(PageSize)}})
	if err != nil {
		return RecordCount{}, err
	}
	return RecordCount{Count: len(resp.Records), Capped: resp.Offset != ""}, nil
}

func (c *Client) CreateRecord(ctx context.Context, baseID, table string, fields map[string]interface{}) (*Record, error) {
	var rec Record
	payload := map[string]interface{}{"fields": fields, "typecast": true}
	if err := c.do(ctx, http.MethodPost, c.tableURL(baseID, table), payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]interface{}) (*Record, error) {
	var rec Record
	payload := map[string]interface{}{"fields": fields, "typecast": true}
	if err := c.do(ctx, http.MethodPatch, c.tableURL(baseID, table)+"/"+url.PathEscape(recordID), payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, baseID, table, recordID string) (bool, error) {
	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, c.tableURL(baseID, table)+"/"+url.PathEscape(recordID), nil, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

func (c *Client) list(ctx context.Context, baseID, table string, query url.Values) (*listResponse, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, c.tableURL(baseID, table)+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) tableURL(baseID, table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(baseID), url.PathEscape(table))
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ProviderError{
			Provider: errors.ProviderAirtable,
			Kind:     errors.KindProvider,
			Details:  "failed to read response body",
			Err:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &errors.ProviderError{
				Provider: errors.ProviderAirtable,
				Kind:     errors.KindProvider,
				Status:   resp.StatusCode,
				Details:  "unexpected response body",
				Err:      err,
			}
		}
	}
	return nil
}

func transportError(err error) error {
	var perr *errors.ProviderError
	if stderrors.As(err, &perr) {
		return perr
	}
	details := "request to Airtable failed"
	if stderrors.Is(err, context.DeadlineExceeded) {
		details = "request to Airtable timed out"
	}
	return &errors.ProviderError{
		Provider: errors.ProviderAirtable,
		Kind:     errors.KindProvider,
		Details:  details,
		Err:      err,
	}
}
