package schema

import "session-provisioner/internal/models"

// MapNotion folds Rules over the Notion baseline. Empty priorities and
// features yield the baseline alone.
func MapNotion(cfg models.BuildConfig) NotionSchema {
	cfg = cfg.Normalize()

	fields := notionBaseline()
	views := notionBaseViews()
	seenField := names(fields, func(f FieldDef) string { return f.Name })
	seenView := names(views, func(v ViewDef) string { return v.Name })

	for _, rule := range Rules {
		if !rule.Applies(cfg) {
			continue
		}
		for _, f := range rule.NotionFields {
			if seenField[f.Name] {
				continue
			}
			seenField[f.Name] = true
			fields = append(fields, cloneField(f))
		}
		for _, v := range rule.NotionViews {
			if seenView[v.Name] {
				continue
			}
			seenView[v.Name] = true
			views = append(views, v)
		}
	}

	return NotionSchema{Fields: fields, Views: views}
}

// MapAirtable folds Rules into the Airtable checklist.
func MapAirtable(cfg models.BuildConfig) AirtableChecklist {
	cfg = cfg.Normalize()

	required := append([]string(nil), airtableRequired...)
	seen := make(map[string]bool, len(required))
	for _, name := range required {
		seen[name] = true
	}

	optional := []string{}
	for _, rule := range Rules {
		if !rule.Applies(cfg) {
			continue
		}
		for _, name := range rule.AirtableOptional {
			if seen[name] {
				continue
			}
			seen[name] = true
			optional = append(optional, name)
		}
	}

	return AirtableChecklist{Required: required, Optional: optional}
}

// AirtableRequired returns the fixed required checklist.
func AirtableRequired() AirtableChecklist {
	return AirtableChecklist{Required: append([]string(nil), airtableRequired...), Optional: []string{}}
}

// AppliedRules returns the names of the rules that fire for cfg.
func AppliedRules(cfg models.BuildConfig) []string {
	cfg = cfg.Normalize()
	out := []string{}
	for _, rule := range Rules {
		if rule.Applies(cfg) {
			out = append(out, rule.Name)
		}
	}
	return out
}

func cloneField(f FieldDef) FieldDef {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	return f
}

func names[T any](items []T, key func(T) string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[key(item)] = true
	}
	return out
}
