// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// New builds a registry ordered by path, then method.
func New(version string, endpoints []Endpoint, now time.Time) *EndpointRegistry {
	sorted := append([]Endpoint(nil), endpoints...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})
	return &EndpointRegistry{
		Version:     version,
		LastUpdated: now.UTC().Format(time.RFC3339),
		Endpoints:   sorted,
	}
}

func LoadRegistry(path string) (*EndpointRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg EndpointRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *EndpointRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the endpoint registered for method and path.
func (r *EndpointRegistry) Find(method, path string) (Endpoint, bool) {
	for _, e := range r.Endpoints {
		if e.Method == method && e.Path == path {
			return e, true
		}
	}
	return Endpoint{}, false
}

// Validate checks ids and routes are unique and every entry is complete.
func (r *EndpointRegistry) Validate() error {
	if len(r.Endpoints) == 0 {
		return fmt.Errorf("registry contains no endpoints")
	}

	ids := make(map[string]bool)
	routes := make(map[string]bool)
	for _, e := range r.Endpoints {
		if e.ID == "" {
			return fmt.Errorf("endpoint %s %s missing required field: ID", e.Method, e.Path)
		}
		if ids[e.ID] {
			return fmt.Errorf("duplicate endpoint ID: %s", e.ID)
		}
		ids[e.ID] = true

		route := e.Method + " " + e.Path
		if routes[route] {
			return fmt.Errorf("duplicate route: %s", route)
		}
		routes[route] = true

		if e.Method == "" || e.Path == "" {
			return fmt.Errorf("endpoint %s missing method or path", e.ID)
		}
		if e.Category == "" {
			return fmt.Errorf("endpoint %s missing required field: Category", e.ID)
		}
	}
	return nil
}
