package schema

import (
	"time"

	"session-provisioner/internal/models"
)

// SampleValues returns one illustrative session keyed by field name.
// Callers keep only the keys that exist in their target schema. Dates are
// time.Time so each provider can encode them its own way.
func SampleValues(cfg models.BuildConfig, now time.Time) map[string]interface{} {
	cfg = cfg.Normalize()
	platform := cfg.Platform.DisplayName()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return map[string]interface{}{
		"Title":         "Sample: Planning my week with " + platform,
		"Date":          today,
		"Platform":      platform,
		"Status":        "Active",
		"Summary":       "Worked through weekly priorities and turned them into a short plan.",
		"Key Insights":  "Batching similar tasks saves context switches.",
		"Action Items":  "Block two focus sessions; review the plan on Friday.",
		"Follow-up":     "Ask for a retrospective template next week.",
		"Notes":         "This sample entry was created during setup. Delete it once you log a real session.",
		"Rating":        4,
		"Topic":         "Work",
		"Category":      "Brainstorm",
		"Project":       "Getting Started",
		"Phase":         "Planning",
		"Tags":          []string{"sample", "planning"},
		"Priority":      "Medium",
		"Duration":      15,
		"Message Count": 12,
		"Satisfaction":  "4",
		"Value Rating":  "High",
		"Reminder Date": today.AddDate(0, 0, 7),
		"Reminder Sent": false,
		"Participants":  "Me",
		"Shared With":   "Team",
	}
}
