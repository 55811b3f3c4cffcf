// internal/models/build_config.go
package models

import (
	"fmt"

	"session-provisioner/internal/common/validation"
)

type Platform string

const (
	PlatformChatGPT    Platform = "chatgpt"
	PlatformClaude     Platform = "claude"
	PlatformGemini     Platform = "gemini"
	PlatformPerplexity Platform = "perplexity"
	PlatformCopilot    Platform = "copilot"
	PlatformOther      Platform = "other"
)

// Platforms lists every platform in display order.
var Platforms = []Platform{
	PlatformChatGPT, PlatformClaude, PlatformGemini, PlatformPerplexity, PlatformCopilot, PlatformOther,
}

var platformDisplayNames = map[Platform]string{
	PlatformChatGPT:    "ChatGPT",
	PlatformClaude:     "Claude",
	PlatformGemini:     "Gemini",
	PlatformPerplexity: "Perplexity",
	PlatformCopilot:    "Copilot",
	PlatformOther:      "Other",
}

// DisplayName returns the label used for select options and sample data.
func (p Platform) DisplayName() string {
	if name, ok := platformDisplayNames[p]; ok {
		return name
	}
	return string(p)
}

type Priority string

const (
	PriorityOrganization  Priority = "organization"
	PriorityAnalytics     Priority = "analytics"
	PriorityCollaboration Priority = "collaboration"
	PrioritySearch        Priority = "search"
)

var Priorities = []Priority{PriorityOrganization, PriorityAnalytics, PriorityCollaboration, PrioritySearch}

type Feature string

const (
	FeatureProjects  Feature = "projects"
	FeatureTags      Feature = "tags"
	FeatureReminders Feature = "reminders"
	FeatureExport    Feature = "export"
)

var Features = []Feature{FeatureProjects, FeatureTags, FeatureReminders, FeatureExport}

type TeamSize string

const (
	TeamSizeSolo   TeamSize = "solo"
	TeamSizeSmall  TeamSize = "small"
	TeamSizeMedium TeamSize = "medium"
	TeamSizeLarge  TeamSize = "large"
)

var TeamSizes = []TeamSize{TeamSizeSolo, TeamSizeSmall, TeamSizeMedium, TeamSizeLarge}

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityStandard Complexity = "standard"
	ComplexityAdvanced Complexity = "advanced"
)

var Complexities = []Complexity{ComplexitySimple, ComplexityStandard, ComplexityAdvanced}

// BuildConfig is the tracker configuration produced by the setup wizard.
// Priorities and Features have set semantics; Normalize collapses duplicates.
type BuildConfig struct {
	Platform   Platform   `json:"platform"`
	Priorities []Priority `json:"priorities"`
	Features   []Feature  `json:"features"`
	TeamSize   TeamSize   `json:"teamSize"`
	Complexity Complexity `json:"complexity"`
}

// Normalize fills defaults and removes duplicate flags, preserving first occurrence.
func (c BuildConfig) Normalize() BuildConfig {
	out := BuildConfig{
		Platform:   c.Platform,
		TeamSize:   c.TeamSize,
		Complexity: c.Complexity,
		Priorities: []Priority{},
		Features:   []Feature{},
	}
	if out.Platform == "" {
		out.Platform = PlatformOther
	}
	if out.TeamSize == "" {
		out.TeamSize = TeamSizeSolo
	}
	if out.Complexity == "" {
		out.Complexity = ComplexityStandard
	}

	seenP := make(map[Priority]bool, len(c.Priorities))
	for _, p := range c.Priorities {
		if !seenP[p] {
			seenP[p] = true
			out.Priorities = append(out.Priorities, p)
		}
	}
	seenF := make(map[Feature]bool, len(c.Features))
	for _, f := range c.Features {
		if !seenF[f] {
			seenF[f] = true
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// Validate re-checks every enum. Request validation is the real boundary.
func (c BuildConfig) Validate() error {
	if c.Platform != "" && !contains(Platforms, c.Platform) {
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	for _, p := range c.Priorities {
		if !contains(Priorities, p) {
			return fmt.Errorf("unknown priority %q", p)
		}
	}
	for _, f := range c.Features {
		if !contains(Features, f) {
			return fmt.Errorf("unknown feature %q", f)
		}
	}
	if c.TeamSize != "" && !contains(TeamSizes, c.TeamSize) {
		return fmt.Errorf("unknown team size %q", c.TeamSize)
	}
	if c.Complexity != "" && !contains(Complexities, c.Complexity) {
		return fmt.Errorf("unknown complexity %q", c.Complexity)
	}
	return nil
}

func (c BuildConfig) HasPriority(p Priority) bool {
	return contains(c.Priorities, p)
}

func (c BuildConfig) HasFeature(f Feature) bool {
	return contains(c.Features, f)
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// ConfigSchema is the request-body schema fragment for a BuildConfig.
func ConfigSchema() validation.Property {
	return validation.Property{
		Type:                 "object",
		Description:          "Tracker configuration produced by the setup wizard",
		AdditionalProperties: boolPtr(false),
		Properties: map[string]validation.Property{
			"platform": {
				Type:        "string",
				Description: "AI chat platform being tracked",
				Enum:        toStrings(Platforms),
			},
			"priorities": {
				Type:        "array",
				Description: "Tracking priorities",
				MaxItems:    intPtr(16),
				Items:       &validation.Property{Type: "string", Enum: toStrings(Priorities)},
			},
			"features": {
				Type:        "array",
				Description: "Optional tracker features",
				MaxItems:    intPtr(16),
				Items:       &validation.Property{Type: "string", Enum: toStrings(Features)},
			},
			"teamSize": {
				Type:        "string",
				Description: "Number of people sharing the tracker",
				Enum:        toStrings(TeamSizes),
			},
			"complexity": {
				Type:        "string",
				Description: "Desired tracker complexity",
				Enum:        toStrings(Complexities),
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}
