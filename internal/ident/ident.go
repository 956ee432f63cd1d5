// Package ident validates and canonicalizes externally supplied record
// references into the store's native UUID type. Input arrives as decoded
// JSON, so references may be strings, objects carrying an "id" field, nulls,
// or arrays of any of those.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/pkg/apierror"
)

// Normalize canonicalizes a single raw reference. Null, empty string, and
// missing values normalize to an invalid NullUUID; an object exposing an "id"
// field is unwrapped first. Anything that does not parse as a UUID fails with
// an invalid-reference error naming field.
func Normalize(value interface{}, field string) (uuid.NullUUID, error) {
	if value == nil {
		return uuid.NullUUID{}, nil
	}

	if obj, ok := value.(map[string]interface{}); ok {
		inner, ok := obj["id"]
		if !ok {
			return uuid.NullUUID{}, apierror.InvalidReference(fmt.Sprintf("invalid identifier provided for %s", field))
		}
		value = inner
		if value == nil {
			return uuid.NullUUID{}, nil
		}
	}

	str, ok := value.(string)
	if !ok {
		return uuid.NullUUID{}, apierror.InvalidReference(fmt.Sprintf("invalid identifier provided for %s", field))
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return uuid.NullUUID{}, nil
	}

	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.NullUUID{}, apierror.InvalidReference(fmt.Sprintf("invalid identifier provided for %s", field))
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// NormalizeArray canonicalizes a raw list of references into a unique id
// sequence preserving first-seen order. Null and missing normalize to an
// empty sequence; any other non-array input, and any element that fails
// Normalize, fails the whole call.
func NormalizeArray(value interface{}, field string) ([]uuid.UUID, error) {
	if value == nil {
		return []uuid.UUID{}, nil
	}

	values, ok := value.([]interface{})
	if !ok {
		return nil, apierror.InvalidReference(fmt.Sprintf("%s must be an array of identifiers", field))
	}

	seen := make(map[uuid.UUID]bool, len(values))
	result := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		normalized, err := Normalize(raw, field)
		if err != nil {
			return nil, err
		}
		if !normalized.Valid || seen[normalized.UUID] {
			continue
		}
		seen[normalized.UUID] = true
		result = append(result, normalized.UUID)
	}
	return result, nil
}
