// ABOUTME: Strict validation of create payloads before a message is built
// ABOUTME: Returns typed field defects instead of throwing heterogeneous errors

package message

import "fmt"

// DefectKind classifies a single validation failure.
type DefectKind string

const (
	DefectMissingField     DefectKind = "missing_field"
	DefectWrongType        DefectKind = "wrong_type"
	DefectEmptyValue       DefectKind = "empty_value"
	DefectInvalidReference DefectKind = "invalid_reference"
)

// FieldError describes one defect found in a create payload.
type FieldError struct {
	Field  string
	Kind   DefectKind
	Detail string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

var allowedCreateFields = map[string]struct{}{
	"to":           {},
	"from":         {},
	"subject":      {},
	"content":      {},
	"isResponseTo": {},
}

// UnknownFields returns the payload keys that are not part of the create schema.
func UnknownFields(payload map[string]any) []string {
	var unknown []string
	for key := range payload {
		if _, ok := allowedCreateFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// ValidateCreate checks a raw create payload against the strict schema. Unlike
// the lenient admission path, nothing is repaired: every defect is reported and
// the payload is rejected as a whole if any are found.
func ValidateCreate(payload map[string]any) []FieldError {
	var defects []FieldError

	for _, field := range []string{"to", "from", "subject", "content"} {
		if _, ok := payload[field]; !ok {
			defects = append(defects, FieldError{field, DefectMissingField, "required field is missing"})
		}
	}

	if raw, ok := payload["to"]; ok {
		list, isList := raw.([]any)
		switch {
		case !isList:
			defects = append(defects, FieldError{"to", DefectWrongType, "must be an array of names"})
		case len(list) == 0:
			defects = append(defects, FieldError{"to", DefectEmptyValue, "must contain at least one recipient"})
		default:
			for i, item := range list {
				name, isString := item.(string)
				if !isString {
					defects = append(defects, FieldError{"to", DefectWrongType, fmt.Sprintf("recipient at index %d must be a string", i)})
					continue
				}
				if _, err := NormalizeName(name); err != nil {
					defects = append(defects, FieldError{"to", DefectEmptyValue, fmt.Sprintf("recipient at index %d is empty", i)})
				}
			}
		}
	}

	if raw, ok := payload["from"]; ok {
		name, isString := raw.(string)
		if !isString {
			defects = append(defects, FieldError{"from", DefectWrongType, "must be a string"})
		} else if _, err := NormalizeName(name); err != nil {
			defects = append(defects, FieldError{"from", DefectEmptyValue, "cannot be empty"})
		}
	}

	for _, field := range []string{"subject", "content"} {
		if raw, ok := payload[field]; ok {
			if _, isString := raw.(string); !isString {
				defects = append(defects, FieldError{field, DefectWrongType, "must be a string"})
			}
		}
	}

	if raw, ok := payload["isResponseTo"]; ok && raw != nil {
		id, isString := raw.(string)
		switch {
		case !isString:
			defects = append(defects, FieldError{"isResponseTo", DefectWrongType, "must be a string or null"})
		case !ValidID(id):
			defects = append(defects, FieldError{"isResponseTo", DefectInvalidReference, fmt.Sprintf("%q is not a valid id", id)})
		}
	}

	return defects
}
