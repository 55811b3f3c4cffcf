package airtable

import (
	"encoding/json"
	"net/http"

	"session-provisioner/internal/common/errors"
)

// kindByType classifies Airtable error types. Anything not listed falls
// back to the HTTP status.
var kindByType = map[string]errors.ErrorKind{
	"AUTHENTICATION_REQUIRED":                errors.KindUnauthorized,
	"INVALID_API_KEY":                        errors.KindUnauthorized,
	"INVALID_PERMISSIONS":                    errors.KindForbidden,
	"INVALID_PERMISSIONS_OR_MODEL_NOT_FOUND": errors.KindForbidden,
	"NOT_FOUND":                              errors.KindNotFound,
	"MODEL_ID_NOT_FOUND":                     errors.KindNotFound,
	"TABLE_NOT_FOUND":                        errors.KindNotFound,
	"INVALID_REQUEST_UNKNOWN":                errors.KindUnprocessable,
	"INVALID_VALUE_FOR_COLUMN":               errors.KindUnprocessable,
	"UNKNOWN_FIELD_NAME":                     errors.KindUnprocessable,
	"INVALID_MULTIPLE_CHOICE_OPTIONS":        errors.KindUnprocessable,
	"ROW_DOES_NOT_EXIST":                     errors.KindNotFound,
	"RATE_LIMIT_REACHED":                     errors.KindRateLimited,
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorObject struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeError reads either {"error": "TYPE"} or
// {"error": {"type": "TYPE", "message": "..."}}.
func decodeError(status int, data []byte) *errors.ProviderError {
	var typ, message string

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && len(body.Error) > 0 {
		var obj errorObject
		if err := json.Unmarshal(body.Error, &obj); err == nil {
			typ, message = obj.Type, obj.Message
		} else {
			_ = json.Unmarshal(body.Error, &typ)
		}
	}

	kind, ok := kindByType[typ]
	if !ok {
		kind = errors.KindFromStatus(status)
	}
	if message == "" {
		message = typ
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &errors.ProviderError{
		Provider:     errors.ProviderAirtable,
		Kind:         kind,
		Status:       status,
		ProviderCode: typ,
		Details:      message,
	}
}
