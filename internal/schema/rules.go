package schema

import "session-provisioner/internal/models"

// Rule adds provider fields when its predicate holds for a config.
// Adding a capability is a new entry here, not new branching code.
type Rule struct {
	Name             string
	Applies          func(models.BuildConfig) bool
	NotionFields     []FieldDef
	NotionViews      []ViewDef
	AirtableOptional []string
}

func priority(p models.Priority) func(models.BuildConfig) bool {
	return func(c models.BuildConfig) bool { return c.HasPriority(p) }
}

func feature(f models.Feature) func(models.BuildConfig) bool {
	return func(c models.BuildConfig) bool { return c.HasFeature(f) }
}

var statusOptions = []string{"Active", "Completed", "Archived", "Needs Follow-up"}

func platformOptions() []string {
	out := make([]string, len(models.Platforms))
	for i, p := range models.Platforms {
		out[i] = p.DisplayName()
	}
	return out
}

// notionBaseline is present in every tracker database, in this order.
func notionBaseline() []FieldDef {
	return []FieldDef{
		{Name: "Title", Type: FieldTitle},
		{Name: "Platform", Type: FieldSelect, Options: platformOptions()},
		{Name: "Status", Type: FieldSelect, Options: append([]string(nil), statusOptions...)},
		{Name: "Created", Type: FieldCreatedTime},
		{Name: "Last Updated", Type: FieldLastEditedTime},
		{Name: "Summary", Type: FieldRichText},
		{Name: "Key Insights", Type: FieldRichText},
		{Name: "Action Items", Type: FieldRichText},
		{Name: "Follow-up", Type: FieldRichText},
		{Name: "Notes", Type: FieldRichText},
	}
}

func notionBaseViews() []ViewDef {
	return []ViewDef{
		{Name: "All Sessions", Type: ViewTable, SortBy: "Created"},
		{Name: "Recent", Type: ViewTable, SortBy: "Last Updated", Filter: "Created is within the past week"},
		{Name: "Active", Type: ViewBoard, GroupBy: "Status", Filter: "Status is Active"},
	}
}

var airtableRequired = []string{"Title", "Date", "Platform", "Status", "Summary", "Rating"}

// Rules is folded over the baselines in order.
var Rules = []Rule{
	{
		Name:    "organization",
		Applies: priority(models.PriorityOrganization),
		NotionFields: []FieldDef{
			{Name: "Topic", Type: FieldSelect, Options: []string{"Work", "Learning", "Personal", "Research", "Creative", "Technical"}},
			{Name: "Category", Type: FieldSelect, Options: []string{"Question", "Brainstorm", "Problem Solving", "Writing", "Code", "Analysis"}},
		},
		NotionViews:      []ViewDef{{Name: "By Topic", Type: ViewBoard, GroupBy: "Topic"}},
		AirtableOptional: []string{"Topic", "Category"},
	},
	{
		Name:    "projects",
		Applies: feature(models.FeatureProjects),
		NotionFields: []FieldDef{
			{Name: "Project", Type: FieldSelect},
			{Name: "Phase", Type: FieldSelect, Options: []string{"Planning", "In Progress", "Review", "Done"}},
		},
		NotionViews:      []ViewDef{{Name: "By Project", Type: ViewBoard, GroupBy: "Project"}},
		AirtableOptional: []string{"Project", "Phase"},
	},
	{
		Name:    "tags",
		Applies: feature(models.FeatureTags),
		NotionFields: []FieldDef{
			{Name: "Tags", Type: FieldMultiSelect},
			{Name: "Priority", Type: FieldSelect, Options: []string{"High", "Medium", "Low"}},
		},
		AirtableOptional: []string{"Tags", "Priority"},
	},
	{
		Name:    "analytics",
		Applies: priority(models.PriorityAnalytics),
		NotionFields: []FieldDef{
			{Name: "Duration", Type: FieldNumber, Format: "number"},
			{Name: "Message Count", Type: FieldNumber, Format: "number"},
			{Name: "Satisfaction", Type: FieldSelect, Options: []string{"1", "2", "3", "4", "5"}},
			{Name: "Value Rating", Type: FieldSelect, Options: []string{"High", "Medium", "Low"}},
		},
		NotionViews:      []ViewDef{{Name: "Analytics Dashboard", Type: ViewTable, SortBy: "Satisfaction"}},
		AirtableOptional: []string{"Duration", "Message Count"},
	},
	{
		Name:    "reminders",
		Applies: feature(models.FeatureReminders),
		NotionFields: []FieldDef{
			{Name: "Reminder Date", Type: FieldDate},
			{Name: "Reminder Sent", Type: FieldCheckbox},
		},
		AirtableOptional: []string{"Reminder Date"},
	},
	{
		Name:             "collaboration",
		Applies:          priority(models.PriorityCollaboration),
		AirtableOptional: []string{"Participants", "Shared With"},
	},
}
