// pkg/registry/schema.go
package registry

// EndpointRegistry is the published catalogue of HTTP endpoints.
type EndpointRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Endpoints   []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID           string                 `json:"id"`
	Method       string                 `json:"method"`
	Path         string                 `json:"path"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	RateLimits   []string               `json:"rateLimits"`
	InputSchema  map[string]interface{} `json:"inputSchema,omitempty"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes   []string               `json:"errorCodes"`
	Tags         []string               `json:"tags,omitempty"`
}
