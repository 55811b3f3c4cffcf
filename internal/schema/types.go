// Package schema translates a BuildConfig into provider schema definitions.
// Everything here is pure: no I/O, no shared mutable state, and the same
// config always yields an identical result.
package schema

import "strings"

// FieldType is a Notion property type.
type FieldType string

const (
	FieldTitle          FieldType = "title"
	FieldRichText       FieldType = "rich_text"
	FieldSelect         FieldType = "select"
	FieldMultiSelect    FieldType = "multi_select"
	FieldNumber         FieldType = "number"
	FieldDate           FieldType = "date"
	FieldCheckbox       FieldType = "checkbox"
	FieldCreatedTime    FieldType = "created_time"
	FieldLastEditedTime FieldType = "last_edited_time"
)

// IsReadOnly reports whether the provider computes the value itself.
func (t FieldType) IsReadOnly() bool {
	return t == FieldCreatedTime || t == FieldLastEditedTime
}

type FieldDef struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"`
	Format  string    `json:"format,omitempty"`
}

// ViewType is the layout a view should be created with.
type ViewType string

const (
	ViewTable ViewType = "table"
	ViewBoard ViewType = "board"
)

type ViewDef struct {
	Name    string   `json:"name"`
	Type    ViewType `json:"type"`
	GroupBy string   `json:"groupBy,omitempty"`
	SortBy  string   `json:"sortBy,omitempty"`
	Filter  string   `json:"filter,omitempty"`
}

// NotionSchema is the ordered property and view layout of a tracker database.
type NotionSchema struct {
	Fields []FieldDef `json:"fields"`
	Views  []ViewDef  `json:"views"`
}

// PropertyTypes returns the name to type mapping reported to callers.
func (s NotionSchema) PropertyTypes() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = string(f.Type)
	}
	return out
}

func (s NotionSchema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

func (s NotionSchema) ViewNames() []string {
	out := make([]string, len(s.Views))
	for i, v := range s.Views {
		out[i] = v.Name
	}
	return out
}

func (s NotionSchema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// AirtableChecklist describes what an Airtable table should contain.
// The base is user-owned; nothing here is ever created.
type AirtableChecklist struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// Diff compares existing field names with the checklist. Matching is
// case-insensitive and ignores surrounding whitespace.
func (c AirtableChecklist) Diff(existing []string) (missingRequired, missingOptional []string) {
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[normalizeName(name)] = true
	}

	missingRequired = []string{}
	for _, name := range c.Required {
		if !have[normalizeName(name)] {
			missingRequired = append(missingRequired, name)
		}
	}
	missingOptional = []string{}
	for _, name := range c.Optional {
		if !have[normalizeName(name)] {
			missingOptional = append(missingOptional, name)
		}
	}
	return missingRequired, missingOptional
}

// Resolve maps a checklist name onto the exact spelling used in the base.
func Resolve(existing []string, name string) (string, bool) {
	want := normalizeName(name)
	for _, candidate := range existing {
		if normalizeName(candidate) == want {
			return candidate, true
		}
	}
	return "", false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
