package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

func checkRequired(label string, value interface{}, param string) (string, error) {
	if !present(value) {
		return fmt.Sprintf("The %v field is required.", label), nil
	}
	return "", nil
}

func checkString(label string, value interface{}, param string) (string, error) {
	if _, ok := value.(string); !ok {
		return fmt.Sprintf("The %v must be a string.", label), nil
	}
	return "", nil
}

func checkEmail(label string, value interface{}, param string) (string, error) {
	s, ok := value.(string)
	if !ok || !emailPattern.MatchString(s) {
		return fmt.Sprintf("The %v must be a valid email address.", label), nil
	}
	return "", nil
}

func checkNumeric(label string, value interface{}, param string) (string, error) {
	if _, ok := asNumber(value); !ok {
		return fmt.Sprintf("The %v must be a number.", label), nil
	}
	return "", nil
}

func checkInteger(label string, value interface{}, param string) (string, error) {
	n, ok := asNumber(value)
	if !ok || n != float64(int64(n)) {
		return fmt.Sprintf("The %v must be an integer.", label), nil
	}
	return "", nil
}

func checkBoolean(label string, value interface{}, param string) (string, error) {
	switch v := value.(type) {
	case bool:
		return "", nil
	case string:
		switch v {
		case "true", "false", "0", "1":
			return "", nil
		}
	}
	return fmt.Sprintf("The %v field must be true or false.", label), nil
}

func checkUrl(label string, value interface{}, param string) (string, error) {
	s, ok := value.(string)
	if ok {
		if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
			return "", nil
		}
	}
	return fmt.Sprintf("The %v must be a valid URL.", label), nil
}

func checkDate(label string, value interface{}, param string) (string, error) {
	if s, ok := value.(string); ok {
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return "", nil
			}
		}
	}
	return fmt.Sprintf("The %v is not a valid date.", label), nil
}

func checkAlpha(label string, value interface{}, param string) (string, error) {
	if isAlpha(value, false) {
		return "", nil
	}
	return fmt.Sprintf("The %v may only contain letters.", label), nil
}

func checkAlphaNum(label string, value interface{}, param string) (string, error) {
	if isAlpha(value, true) {
		return "", nil
	}
	return fmt.Sprintf("The %v may only contain letters and numbers.", label), nil
}

func checkMin(label string, value interface{}, param string) (string, error) {
	bound, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return "", errors.New("min requires a numeric parameter")
	}
	if size(value) < bound {
		return fmt.Sprintf("The %v must be at least %v.", label, param), nil
	}
	return "", nil
}

func checkMax(label string, value interface{}, param string) (string, error) {
	bound, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return "", errors.New("max requires a numeric parameter")
	}
	if size(value) > bound {
		return fmt.Sprintf("The %v may not be greater than %v.", label, param), nil
	}
	return "", nil
}

func checkIn(label string, value interface{}, param string) (string, error) {
	if param == "" {
		return "", errors.New("in requires a list of allowed values")
	}
	needle := Stringify(value)
	for _, allowed := range strings.Split(param, ",") {
		if needle == allowed {
			return "", nil
		}
	}
	return fmt.Sprintf("The selected %v is invalid.", label), nil
}

func checkRegex(label string, value interface{}, param string) (string, error) {
	pattern, err := regexp.Compile(param)
	if err != nil {
		return "", fmt.Errorf("invalid regex parameter: %w", err)
	}
	if s, ok := value.(string); ok && pattern.MatchString(s) {
		return "", nil
	}
	return fmt.Sprintf("The %v format is invalid.", label), nil
}

func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// size measures a value the way bounds rules expect: numbers by magnitude,
// strings by rune count, arrays by element count.
func size(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		return float64(utf8.RuneCountInString(v))
	case []interface{}:
		return float64(len(v))
	case map[string]interface{}:
		return float64(len(v))
	default:
		return 0
	}
}

func isAlpha(value interface{}, allowDigits bool) bool {
	s, ok := value.(string)
	if !ok || s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || (allowDigits && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Stringify converts a raw payload value to its stored string form. Strings
// pass through untouched, everything else (numbers, bools, arrays, objects)
// is serialized to json text.
func Stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}
