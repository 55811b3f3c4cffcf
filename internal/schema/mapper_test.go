package schema

import (
	"encoding/json"
	"testing"
	"time"

	"session-provisioner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baselineNames = []string{
	"Title", "Platform", "Status", "Created", "Last Updated",
	"Summary", "Key Insights", "Action Items", "Follow-up", "Notes",
}

// ==========================
// Notion Mapping Tests
// ==========================

func TestMapNotion_BaselineOnlyForEmptyConfig(t *testing.T) {
	s := MapNotion(models.BuildConfig{})

	assert.Equal(t, baselineNames, s.FieldNames())
	assert.Equal(t, []string{"All Sessions", "Recent", "Active"}, s.ViewNames())

	types := s.PropertyTypes()
	assert.Equal(t, "title", types["Title"])
	assert.Equal(t, "created_time", types["Created"])
	assert.Equal(t, "last_edited_time", types["Last Updated"])
	assert.Equal(t, "rich_text", types["Notes"])
}

func TestMapNotion_AnalyticsAndTagsExample(t *testing.T) {
	s := MapNotion(models.BuildConfig{
		Priorities: []models.Priority{models.PriorityAnalytics},
		Features:   []models.Feature{models.FeatureTags},
	})

	want := append(append([]string{}, baselineNames...),
		"Tags", "Priority", "Duration", "Message Count", "Satisfaction", "Value Rating")
	assert.ElementsMatch(t, want, s.FieldNames())
	assert.Len(t, s.Fields, len(baselineNames)+6)

	for _, absent := range []string{"Project", "Phase", "Topic", "Category", "Reminder Date"} {
		_, ok := s.Field(absent)
		assert.False(t, ok, absent)
	}

	types := s.PropertyTypes()
	assert.Equal(t, "multi_select", types["Tags"])
	assert.Equal(t, "number", types["Duration"])
	assert.Equal(t, "select", types["Satisfaction"])

	assert.Equal(t, []string{"All Sessions", "Recent", "Active", "Analytics Dashboard"}, s.ViewNames())
}

func TestMapNotion_EveryFlag(t *testing.T) {
	s := MapNotion(models.BuildConfig{
		Platform:   models.PlatformClaude,
		Priorities: models.Priorities,
		Features:   models.Features,
	})

	for _, name := range []string{"Topic", "Category", "Project", "Phase", "Tags", "Priority",
		"Duration", "Message Count", "Satisfaction", "Value Rating", "Reminder Date", "Reminder Sent"} {
		_, ok := s.Field(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, []string{"All Sessions", "Recent", "Active", "By Topic", "By Project", "Analytics Dashboard"}, s.ViewNames())

	reminderSent, _ := s.Field("Reminder Sent")
	assert.Equal(t, FieldCheckbox, reminderSent.Type)
	reminderDate, _ := s.Field("Reminder Date")
	assert.Equal(t, FieldDate, reminderDate.Type)
}

func TestMapNotion_BaselineAlwaysPresent(t *testing.T) {
	configs := []models.BuildConfig{
		{},
		{Priorities: []models.Priority{models.PrioritySearch}},
		{Features: []models.Feature{models.FeatureExport}},
		{Priorities: models.Priorities, Features: models.Features},
	}
	for _, cfg := range configs {
		s := MapNotion(cfg)
		assert.Equal(t, baselineNames, s.FieldNames()[:len(baselineNames)])
	}
}

func TestMapNotion_Deterministic(t *testing.T) {
	cfg := models.BuildConfig{
		Platform:   models.PlatformGemini,
		Priorities: []models.Priority{models.PriorityAnalytics, models.PriorityOrganization},
		Features:   []models.Feature{models.FeatureReminders, models.FeatureProjects, models.FeatureTags},
	}

	first, err := json.Marshal(MapNotion(cfg))
	require.NoError(t, err)
	second, err := json.Marshal(MapNotion(cfg))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	reordered := cfg
	reordered.Priorities = []models.Priority{models.PriorityOrganization, models.PriorityAnalytics}
	third, err := json.Marshal(MapNotion(reordered))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}

func TestMapNotion_DuplicateFlagsCollapse(t *testing.T) {
	s := MapNotion(models.BuildConfig{Features: []models.Feature{models.FeatureTags, models.FeatureTags}})
	assert.Len(t, s.Fields, len(baselineNames)+2)
}

func TestMapNotion_ResultsDoNotShareOptions(t *testing.T) {
	a := MapNotion(models.BuildConfig{})
	a.Fields[2].Options[0] = "mutated"

	b := MapNotion(models.BuildConfig{})
	assert.Equal(t, "Active", b.Fields[2].Options[0])
}

// ==========================
// Airtable Mapping Tests
// ==========================

func TestMapAirtable(t *testing.T) {
	tests := []struct {
		name         string
		cfg          models.BuildConfig
		wantOptional []string
	}{
		{"empty config", models.BuildConfig{}, []string{}},
		{
			"projects and collaboration",
			models.BuildConfig{
				Priorities: []models.Priority{models.PriorityCollaboration},
				Features:   []models.Feature{models.FeatureProjects},
			},
			[]string{"Project", "Phase", "Participants", "Shared With"},
		},
		{
			"everything",
			models.BuildConfig{Priorities: models.Priorities, Features: models.Features},
			[]string{"Topic", "Category", "Project", "Phase", "Tags", "Priority", "Duration", "Message Count", "Reminder Date", "Participants", "Shared With"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MapAirtable(tt.cfg)
			assert.Equal(t, []string{"Title", "Date", "Platform", "Status", "Summary", "Rating"}, c.Required)
			assert.Equal(t, tt.wantOptional, c.Optional)
		})
	}
}

func TestAirtableChecklist_Diff(t *testing.T) {
	c := MapAirtable(models.BuildConfig{Features: []models.Feature{models.FeatureTags}})

	missingReq, missingOpt := c.Diff([]string{"Title", "date", " Platform ", "Status", "Summary", "Tags"})
	assert.Equal(t, []string{"Rating"}, missingReq)
	assert.Equal(t, []string{"Priority"}, missingOpt)

	missingReq, missingOpt = c.Diff(nil)
	assert.Len(t, missingReq, 6)
	assert.Len(t, missingOpt, 2)
}

func TestResolve(t *testing.T) {
	name, ok := Resolve([]string{"message count", "Title"}, "Message Count")
	assert.True(t, ok)
	assert.Equal(t, "message count", name)

	_, ok = Resolve([]string{"Title"}, "Rating")
	assert.False(t, ok)
}

func TestAppliedRules(t *testing.T) {
	assert.Equal(t, []string{}, AppliedRules(models.BuildConfig{}))
	assert.Equal(t, []string{"tags", "analytics"}, AppliedRules(models.BuildConfig{
		Priorities: []models.Priority{models.PriorityAnalytics},
		Features:   []models.Feature{models.FeatureTags},
	}))
}

func TestSampleValues(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	values := SampleValues(models.BuildConfig{Platform: models.PlatformChatGPT}, now)

	assert.Equal(t, "ChatGPT", values["Platform"])
	assert.Equal(t, "Active", values["Status"])
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), values["Date"])
	assert.Equal(t, time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), values["Reminder Date"])

	s := MapNotion(models.BuildConfig{Priorities: models.Priorities, Features: models.Features})
	for _, f := range s.Fields {
		if f.Type.IsReadOnly() {
			continue
		}
		_, ok := values[f.Name]
		assert.True(t, ok, "no sample value for %s", f.Name)
	}
}
