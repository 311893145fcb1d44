package check

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// evaluateEquals compares with reflect.DeepEqual. Integer types
// are compared numerically so that 42 (int) equals 42 (int64)
// and YAML-decoded expectations work.
func evaluateEquals(def Definition, value any) (bool, string) {
	if a, ok := toInt64(value); ok {
		if b, ok := toInt64(def.Value); ok {
			if a == b {
				return true, fmt.Sprintf("equals %d", b)
			}
			return false, fmt.Sprintf("%d != %d", a, b)
		}
	}
	if reflect.DeepEqual(value, def.Value) {
		return true, fmt.Sprintf("equals %v", def.Value)
	}
	return false, fmt.Sprintf("%v != %v", value, def.Value)
}

// evaluateNotEmpty checks that a value is non-nil and non-empty.
func evaluateNotEmpty(_ Definition, value any) (bool, string) {
	if value == nil {
		return false, "value is nil"
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return false, "string is empty"
		}
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			if rv.Len() == 0 {
				return false, fmt.Sprintf("%s is empty", rv.Kind())
			}
		}
	}

	return true, "value is not empty"
}

// evaluateContains checks that a string value contains the
// expected substring (case-insensitive).
func evaluateContains(def Definition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	expected, ok := def.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}

	if strings.Contains(
		strings.ToLower(str), strings.ToLower(expected),
	) {
		return true, fmt.Sprintf("contains '%s'", expected)
	}
	return false, fmt.Sprintf("does not contain '%s'", expected)
}

// evaluateContainsAny checks that a string value contains at
// least one of the expected substrings.
func evaluateContainsAny(def Definition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	lower := strings.ToLower(str)
	for _, item := range def.Values {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s)) {
			return true, fmt.Sprintf("contains '%s'", s)
		}
	}
	return false, fmt.Sprintf("contains none of %v", def.Values)
}

// evaluateMinLength checks that a string value meets a minimum
// character length.
func evaluateMinLength(def Definition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	minLength, ok := toInt64(def.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	actual := int64(len(str))
	if actual >= minLength {
		return true, fmt.Sprintf("length %d >= %d", actual, minLength)
	}
	return false, fmt.Sprintf("length %d < %d", actual, minLength)
}

// evaluateMinCount checks that a collection has at least the
// expected number of elements.
func evaluateMinCount(def Definition, value any) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}
	minCount, ok := toInt64(def.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if int64(count) >= minCount {
		return true, fmt.Sprintf("count %d >= %d", count, minCount)
	}
	return false, fmt.Sprintf("count %d < %d", count, minCount)
}

// evaluateExactCount checks that a collection has exactly the
// expected number of elements.
func evaluateExactCount(def Definition, value any) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}
	want, ok := toInt64(def.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if int64(count) == want {
		return true, fmt.Sprintf("count is %d", count)
	}
	return false, fmt.Sprintf("count %d != %d", count, want)
}

// evaluateRegex matches a string value against a pattern.
func evaluateRegex(def Definition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	pattern, ok := def.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err)
	}
	if re.MatchString(str) {
		return true, fmt.Sprintf("matches /%s/", pattern)
	}
	return false, fmt.Sprintf("does not match /%s/", pattern)
}

// evaluateOneOf checks that the value equals one of Values.
func evaluateOneOf(def Definition, value any) (bool, string) {
	for _, candidate := range def.Values {
		if ok, _ := evaluateEquals(
			Definition{Value: candidate}, value,
		); ok {
			return true, fmt.Sprintf("%v is allowed", value)
		}
	}
	return false, fmt.Sprintf("%v is not one of %v", value, def.Values)
}

// evaluateNoDuplicates checks that a slice contains no duplicate
// values (compared via fmt.Sprintf("%v")).
func evaluateNoDuplicates(_ Definition, value any) (bool, string) {
	rv := reflect.ValueOf(value)
	if value == nil ||
		(rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false, "value is not a slice"
	}

	seen := make(map[string]struct{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		key := fmt.Sprintf("%v", rv.Index(i).Interface())
		if _, dup := seen[key]; dup {
			return false, fmt.Sprintf("duplicate value: %s", key)
		}
		seen[key] = struct{}{}
	}
	return true, "no duplicates"
}

// --- helpers ---

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func toCount(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}
