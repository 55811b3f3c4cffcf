package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"session-provisioner/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for request body schemas.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              interface{}         `json:"default,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Pattern              *string             `json:"pattern,omitempty"`
	MinLength            *int                `json:"minLength,omitempty"`
	MaxLength            *int                `json:"maxLength,omitempty"`
	MaxItems             *int                `json:"maxItems,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
	MinProperties        *int                `json:"minProperties,omitempty"`

	// Message replaces the library's description for format violations on this field.
	Message string `json:"-"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator is a compiled JSONSchema.
type Validator struct {
	schema   *gojsonschema.Schema
	messages map[string]string
}

// Compile compiles schema once so it can be reused across requests.
func Compile(schema JSONSchema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	messages := map[string]string{}
	collectMessages("", schema.Properties, messages)

	return &Validator{schema: compiled, messages: messages}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schema JSONSchema) *Validator {
	v, err := Compile(schema)
	if err != nil {
		panic(err)
	}
	return v
}

func collectMessages(prefix string, props map[string]Property, out map[string]string) {
	for name, prop := range props {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if prop.Message != "" {
			out[path] = prop.Message
		}
		if len(prop.Properties) > 0 {
			collectMessages(path, prop.Properties, out)
		}
	}
}

// ValidateInput compiles schema and validates input in one step.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	v, err := Compile(schema)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{Field: "(schema)", Message: err.Error(), Code: "SCHEMA_INVALID"}}}
	}
	return v.Validate(input)
}

// Validate collects every violation in doc rather than stopping at the first.
func (v *Validator) Validate(doc interface{}) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_DOCUMENT"}}}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, v.convert(re))
	}
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Field != errs[j].Field {
			return errs[i].Field < errs[j].Field
		}
		return errs[i].Code < errs[j].Code
	})

	return &ValidationResult{Valid: false, Errors: errs}
}

var errorCodes = map[string]string{
	"required":                        "REQUIRED_FIELD_MISSING",
	"additional_property_not_allowed": "EXTRA_FIELD",
	"invalid_type":                    "INVALID_TYPE",
	"enum":                            "INVALID_ENUM_VALUE",
	"pattern":                         "PATTERN_MISMATCH",
	"string_gte":                      "MIN_LENGTH_VIOLATION",
	"string_lte":                      "MAX_LENGTH_VIOLATION",
	"array_max_items":                 "TOO_MANY_ITEMS",
	"number_gte":                      "MINIMUM_VIOLATION",
	"number_lte":                      "MAXIMUM_VIOLATION",
}

func (v *Validator) convert(re gojsonschema.ResultError) ValidationError {
	field := fieldPath(re.Field())
	message := re.Description()

	switch re.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := re.Details()["property"].(string); ok {
			if field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
	case "pattern", "string_gte", "string_lte":
		if custom, ok := v.messages[field]; ok {
			message = custom
		}
	}

	code, ok := errorCodes[re.Type()]
	if !ok {
		code = strings.ToUpper(re.Type())
	}

	if field == "" {
		field = "(root)"
	}
	return ValidationError{Field: field, Message: message, Code: code}
}

// fieldPath turns "(root)" into "" and "config.priorities.0" into "config.priorities[0]".
func fieldPath(raw string) string {
	if raw == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		return ""
	}
	parts := strings.Split(raw, ".")
	var b strings.Builder
	for i, part := range parts {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

// DecodeAndValidate parses body, validates it against v, sanitizes every
// string leaf and decodes the result into out. It returns the sanitized
// document for logging.
func DecodeAndValidate(body []byte, v *Validator, out interface{}) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.NewValidationError("request body must be a JSON object", nil)
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.NewValidationError("request body must be a JSON object", nil)
	}

	if err := ValidateDocument(obj, v); err != nil {
		return obj, err
	}

	sanitized, _ := Sanitize(obj).(map[string]interface{})
	raw, err := json.Marshal(sanitized)
	if err != nil {
		return sanitized, fmt.Errorf("failed to re-encode sanitized body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return sanitized, err
	}
	return sanitized, nil
}

// ValidateDocument validates doc and converts violations into a VALIDATION_ERROR.
func ValidateDocument(doc map[string]interface{}, v *Validator) error {
	result := v.Validate(doc)
	if result.Valid {
		return nil
	}
	return errors.NewValidationError(
		fmt.Sprintf("%d validation error(s): %s", len(result.Errors), strings.Join(result.GetErrorMessages(), "; ")),
		result.FieldErrors(),
	)
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var out []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field {
			out = append(out, err)
		}
	}
	return out
}

// FieldErrors converts the result into the envelope's fields[] entries.
func (vr *ValidationResult) FieldErrors() []errors.FieldError {
	out := make([]errors.FieldError, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		out = append(out, errors.FieldError{Field: err.Field, Message: err.Message, Code: err.Code})
	}
	return out
}

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}
