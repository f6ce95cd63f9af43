// Package validation checks submission payloads against the rule tokens
// declared on a form's fields. Rules are data, not code: each token is
// dispatched through a registry of named checks, and every failing rule for a
// field is reported so callers get a complete error map in one pass.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"dynamic_forms/forms/schema"
)

// ErrUnknownRule indicates a field declares a rule token the engine has no
// check for. This is a configuration error, not a validation failure: it is
// reported immediately instead of silently skipping the rule.
var ErrUnknownRule = errors.New("unknown validation rule")

// Errors maps field id -> human readable messages. A nil/empty map means the
// payload passed.
type Errors map[string][]string

func (e Errors) add(fieldId, message string) {
	e[fieldId] = append(e[fieldId], message)
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// check inspects a payload value. It returns a message when the value fails,
// or an error when the rule itself is misconfigured (e.g. a bad parameter).
type check func(label string, value interface{}, param string) (string, error)

var registry = map[string]check{
	"required":  checkRequired,
	"string":    checkString,
	"email":     checkEmail,
	"numeric":   checkNumeric,
	"integer":   checkInteger,
	"boolean":   checkBoolean,
	"url":       checkUrl,
	"date":      checkDate,
	"alpha":     checkAlpha,
	"alpha_num": checkAlphaNum,
	"min":       checkMin,
	"max":       checkMax,
	"in":        checkIn,
	"regex":     checkRegex,
}

func splitToken(token string) (name, param string) {
	name, param, _ = strings.Cut(token, ":")
	return name, param
}

// Validate applies each field's declared rules to the payload entry for that
// field's id. All failures are collected; the returned error is non-nil only
// for configuration problems (unknown tokens, malformed rule parameters),
// which abort immediately.
func Validate(fields []schema.FormField, payload map[string]interface{}) (Errors, error) {
	errs := Errors{}

	fieldIds := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		fieldId := field.Id.String()
		fieldIds[fieldId] = struct{}{}

		value, hasValue := payload[fieldId]
		if hasValue && !present(value) {
			hasValue = false
		}

		requiredChecked := false
		if field.IsRequired {
			requiredChecked = true
			if !hasValue {
				errs.add(fieldId, fmt.Sprintf("The %v field is required.", field.Label))
			}
		}

		for _, token := range field.ValidationRules {
			name, param := splitToken(token)

			rule, ok := registry[name]
			if !ok {
				return nil, fmt.Errorf("%w '%v' on field '%v'", ErrUnknownRule, token, field.Label)
			}

			if name == "required" {
				if requiredChecked {
					continue
				}
				requiredChecked = true
			} else if !hasValue {
				// Format rules only apply to values that are present.
				continue
			}

			message, err := rule(field.Label, value, param)
			if err != nil {
				return nil, fmt.Errorf("rule '%v' on field '%v': %w", token, field.Label, err)
			}
			if message != "" {
				errs.add(fieldId, message)
			}
		}
	}

	for key := range payload {
		if _, ok := fieldIds[key]; !ok {
			errs.add(key, "The submitted field does not belong to this form.")
		}
	}

	if !errs.Any() {
		return nil, nil
	}
	return errs, nil
}

// present reports whether a payload value counts as answered. Empty strings,
// arrays, and objects are treated the same as a missing entry.
func present(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
