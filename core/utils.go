package core

import (
	"fmt"
	"reflect"
	"strings"
)

func toInt(val any) (int64, error) {
	var keyInt int64
	switch v := val.(type) {
	case int64:
		keyInt = v
	case float64:
		keyInt = int64(v)
	case int:
		keyInt = int64(v)
	case string:
		if _, err := fmt.Sscanf(v, "%d", &keyInt); err != nil {
			return 0, fmt.Errorf("cannot convert %q to int: %w", v, err)
		}
	default:
		return 0, fmt.Errorf("unexpected type for key field: %T", v)
	}
	return keyInt, nil
}

// contains checks if a string is present in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Must panics if err is non-nil, otherwise returns v.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

// BuildResourcePathWithID builds a complete resource path with a key parameter
// and optional additional segments. It takes a resource path (e.g. "/machines"),
// a key of any type, and optional additional path segments.
// Returns the complete path (e.g. "/machines/123" or "/machines/123/drives").
func BuildResourcePathWithID(resourcePath string, id any, additionalSegments ...string) string {
	var path string
	if intId, err := toInt(id); err == nil {
		path = fmt.Sprintf("%s/%d", resourcePath, intId)
	} else {
		path = fmt.Sprintf("%s/%v", resourcePath, id)
	}
	for _, segment := range additionalSegments {
		path += "/" + segment
	}
	return path
}

// parseJSONTag splits a json struct tag into its name and omitempty flag.
func parseJSONTag(tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	omitEmpty := false
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

// structToMap converts a struct to a map[string]any using reflection,
// respecting json tags and handling nested structs recursively.
// This avoids the overhead of JSON marshaling/unmarshaling.
func structToMap(item any) map[string]any {
	res := map[string]any{}
	if item == nil {
		return res
	}

	v := reflect.TypeOf(item)
	reflectValue := reflect.Indirect(reflect.ValueOf(item))

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
	}

	for i := 0; i < v.NumField(); i++ {
		jsonTag := v.Field(i).Tag.Get("json")
		field := reflectValue.Field(i)

		// Skip unexported fields
		if !field.CanInterface() {
			continue
		}

		tagName, omitEmpty := parseJSONTag(jsonTag)
		if tagName == "" || tagName == "-" {
			continue
		}
		if omitEmpty && field.IsZero() {
			continue
		}

		value := field.Interface()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
			value = field.Interface()
		}

		if field.Kind() == reflect.Struct {
			res[tagName] = structToMap(value)
		} else {
			res[tagName] = value
		}
	}
	return res
}
