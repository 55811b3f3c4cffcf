// Package notion wraps the Notion SDK with the calls the provisioner makes.
// Every method performs one outbound request and returns a
// *errors.ProviderError on failure.
package notion

import (
	"context"
	stderrors "errors"
	"net/http"

	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/errors"
	commonhttp "session-provisioner/internal/common/http"
	"session-provisioner/internal/schema"

	"github.com/jomei/notionapi"
)

// Page is the subset of a Notion page the provisioner reports.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// Database is the subset of a created Notion database the provisioner reports.
type Database struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type Client struct {
	api *notionapi.Client
}

// NewClient builds a client whose traffic goes through the shared
// rate-limited transport.
func NewClient(cfg config.NotionConfig) (*Client, error) {
	hc, err := commonhttp.NewClient(commonhttp.Options{
		Provider:          errors.ProviderNotion,
		Timeout:           config.GetDuration(cfg.Timeout),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		BaseURL:           rewriteBase(cfg.BaseURL),
	})
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(cfg.Token, hc.HTTPClient()), nil
}

// NewWithHTTPClient builds a client over an existing http.Client.
func NewWithHTTPClient(token string, hc *http.Client) *Client {
	return &Client{
		api: notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(hc)),
	}
}

// The SDK always targets api.notion.com; a configured base URL other than
// that is applied by the transport.
func rewriteBase(base string) string {
	if base == "" || base == "https://api.notion.com" {
		return ""
	}
	return base
}

// GetPage fetches a page the integration has been shared with.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	page, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, mapError(err)
	}
	return &Page{ID: string(page.ID), URL: page.URL}, nil
}

// TestConnection verifies the token can read the given page.
func (c *Client) TestConnection(ctx context.Context, pageID string) (*Page, error) {
	return c.GetPage(ctx, pageID)
}

// CreateDatabase creates a full-page database under parentPageID.
func (c *Client) CreateDatabase(ctx context.Context, parentPageID, title string, fields []schema.FieldDef) (*Database, error) {
	props, err := PropertyConfigs(fields)
	if err != nil {
		return nil, errors.NewProviderError(errors.ProviderNotion, errors.KindUnprocessable, err.Error())
	}

	db, err := c.api.Database.Create(ctx, &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentType("page_id"),
			PageID: notionapi.PageID(parentPageID),
		},
		Title:      RichText(title),
		Properties: props,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &Database{ID: string(db.ID), URL: db.URL}, nil
}

// CreatePage adds one row to a database. Values without a matching field
// are ignored.
func (c *Client) CreatePage(ctx context.Context, databaseID string, fields []schema.FieldDef, values map[string]interface{}) (*Page, error) {
	props, err := PropertyValues(fields, values)
	if err != nil {
		return nil, errors.NewProviderError(errors.ProviderNotion, errors.KindUnprocessable, err.Error())
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentType("database_id"),
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: props,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &Page{ID: string(page.ID), URL: page.URL}, nil
}

// kindByCode classifies Notion API error codes.
var kindByCode = map[string]errors.ErrorKind{
	"unauthorized":        errors.KindUnauthorized,
	"restricted_resource": errors.KindForbidden,
	"object_not_found":    errors.KindNotFound,
	"validation_error":    errors.KindUnprocessable,
	"rate_limited":        errors.KindRateLimited,
}

func mapError(err error) error {
	var perr *errors.ProviderError
	if stderrors.As(err, &perr) {
		return perr
	}

	var apiErr *notionapi.Error
	if stderrors.As(err, &apiErr) {
		code := string(apiErr.Code)
		kind, ok := kindByCode[code]
		if !ok {
			kind = errors.KindFromStatus(apiErr.Status)
		}
		return &errors.ProviderError{
			Provider:     errors.ProviderNotion,
			Kind:         kind,
			Status:       apiErr.Status,
			ProviderCode: code,
			Details:      apiErr.Message,
			Err:          err,
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &errors.ProviderError{
			Provider: errors.ProviderNotion,
			Kind:     errors.KindProvider,
			Details:  "request to Notion timed out",
			Err:      err,
		}
	}

	return &errors.ProviderError{
		Provider: errors.ProviderNotion,
		Kind:     errors.KindProvider,
		Details:  err.Error(),
		Err:      err,
	}
}
