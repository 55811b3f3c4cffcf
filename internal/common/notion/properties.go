package notion

import (
	"fmt"
	"time"
	"unicode/utf8"

	"session-provisioner/internal/schema"

	"github.com/jomei/notionapi"
)

// MaxTextLength is the per-block character limit for rich text content.
const MaxTextLength = 2000

var optionColors = []notionapi.Color{"blue", "green", "yellow", "orange", "red", "purple", "pink", "brown", "gray"}

// PropertyConfigs converts field definitions into a database property map.
func PropertyConfigs(fields []schema.FieldDef) (notionapi.PropertyConfigs, error) {
	out := make(notionapi.PropertyConfigs, len(fields))
	for _, f := range fields {
		cfg, err := propertyConfig(f)
		if err != nil {
			return nil, err
		}
		out[f.Name] = cfg
	}
	return out, nil
}

func propertyConfig(f schema.FieldDef) (notionapi.PropertyConfig, error) {
	typ := notionapi.PropertyConfigType(f.Type)

	switch f.Type {
	case schema.FieldTitle:
		return &notionapi.TitlePropertyConfig{Type: typ}, nil
	case schema.FieldRichText:
		return &notionapi.RichTextPropertyConfig{Type: typ}, nil
	case schema.FieldSelect:
		return &notionapi.SelectPropertyConfig{Type: typ, Select: notionapi.Select{Options: options(f.Options)}}, nil
	case schema.FieldMultiSelect:
		return &notionapi.MultiSelectPropertyConfig{Type: typ, MultiSelect: notionapi.Select{Options: options(f.Options)}}, nil
	case schema.FieldNumber:
		format := f.Format
		if format == "" {
			format = "number"
		}
		return &notionapi.NumberPropertyConfig{Type: typ, Number: notionapi.NumberFormat{Format: notionapi.FormatType(format)}}, nil
	case schema.FieldDate:
		return &notionapi.DatePropertyConfig{Type: typ}, nil
	case schema.FieldCheckbox:
		return &notionapi.CheckboxPropertyConfig{Type: typ}, nil
	case schema.FieldCreatedTime:
		return &notionapi.CreatedTimePropertyConfig{Type: typ}, nil
	case schema.FieldLastEditedTime:
		return &notionapi.LastEditedTimePropertyConfig{Type: typ}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q for %q", f.Type, f.Name)
	}
}

func options(names []string) []notionapi.Option {
	out := make([]notionapi.Option, len(names))
	for i, name := range names {
		out[i] = notionapi.Option{Name: name, Color: optionColors[i%len(optionColors)]}
	}
	return out
}

// PropertyValues builds page property values for every writable field that
// has a value. Values of the wrong Go type for a field are an error.
func PropertyValues(fields []schema.FieldDef, values map[string]interface{}) (notionapi.Properties, error) {
	out := make(notionapi.Properties)
	for _, f := range fields {
		if f.Type.IsReadOnly() {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		prop, err := propertyValue(f, v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = prop
	}
	return out, nil
}

func propertyValue(f schema.FieldDef, v interface{}) (notionapi.Property, error) {
	typ := notionapi.PropertyType(f.Type)

	switch f.Type {
	case schema.FieldTitle:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f, v)
		}
		return &notionapi.TitleProperty{Type: typ, Title: RichText(s)}, nil
	case schema.FieldRichText:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f, v)
		}
		return &notionapi.RichTextProperty{Type: typ, RichText: RichText(s)}, nil
	case schema.FieldSelect:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f, v)
		}
		return &notionapi.SelectProperty{Type: typ, Select: notionapi.Option{Name: s}}, nil
	case schema.FieldMultiSelect:
		list, ok := v.([]string)
		if !ok {
			return nil, typeError(f, v)
		}
		opts := make([]notionapi.Option, len(list))
		for i, s := range list {
			opts[i] = notionapi.Option{Name: s}
		}
		return &notionapi.MultiSelectProperty{Type: typ, MultiSelect: opts}, nil
	case schema.FieldNumber:
		n, ok := toFloat(v)
		if !ok {
			return nil, typeError(f, v)
		}
		return &notionapi.NumberProperty{Type: typ, Number: n}, nil
	case schema.FieldDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, typeError(f, v)
		}
		start := notionapi.Date(t)
		return &notionapi.DateProperty{Type: typ, Date: &notionapi.DateObject{Start: &start}}, nil
	case schema.FieldCheckbox:
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(f, v)
		}
		return &notionapi.CheckboxProperty{Type: typ, Checkbox: b}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q for %q", f.Type, f.Name)
	}
}

// RichText wraps s as a single text run, truncated to MaxTextLength runes.
func RichText(s string) []notionapi.RichText {
	if utf8.RuneCountInString(s) > MaxTextLength {
		s = string([]rune(s)[:MaxTextLength])
	}
	return []notionapi.RichText{{
		Type: notionapi.ObjectType("text"),
		Text: &notionapi.Text{Content: s},
	}}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func typeError(f schema.FieldDef, v interface{}) error {
	return fmt.Errorf("field %q of type %s cannot take a %T value", f.Name, f.Type, v)
}
