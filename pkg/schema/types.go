package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Type checks one parameter value.
type Type interface {
	// Name is the type as written in a serialized schema, e.g. "int" or "[int]".
	Name() string
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

// Validate accepts scalars, which weak decoding renders as text.
func (stringType) Validate(value any) error {
	switch value.(type) {
	case string, bool, int, int8, int16, int32, int64, float32, float64:
		return nil
	default:
		return fmt.Errorf("expected string, got %T", value)
	}
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float32:
		if v == float32(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number %v", v)
	case float64:
		// JSON numbers decode as float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number %v", v)
	case string:
		if _, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("expected int, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(value any) error {
	var f float64
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float32:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("expected float, got %q", v)
		}
		f = parsed
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected finite float, got %v", value)
	}
	return nil
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	switch v := value.(type) {
	case bool:
		return nil
	case string:
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("expected bool, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected bool, got %T", value)
	}
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

// Validate accepts a single element too; weak decoding wraps it.
func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		if err := t.elem.Validate(value); err != nil {
			return fmt.Errorf("expected %s: %w", t.Name(), err)
		}
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type objectType struct {
	fields Schema
}

func (objectType) Name() string { return "object" }

func (t objectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	if len(t.fields) == 0 {
		return nil
	}
	return Validate(t.fields, m)
}

type enumType struct {
	values []string
}

func (t enumType) Name() string { return "enum(" + strings.Join(t.values, "|") + ")" }

// Validate compares case-insensitively.
func (t enumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected one of %s, got %T", strings.Join(t.values, ", "), value)
	}
	for _, v := range t.values {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return nil
		}
	}
	return fmt.Errorf("expected one of %s, got %q", strings.Join(t.values, ", "), s)
}

// String accepts text and other scalars.
func String() Type { return stringType{} }

// Int accepts integers, whole floats and numeric strings.
func Int() Type { return intType{} }

// Float accepts numbers and numeric strings.
func Float() Type { return floatType{} }

// Bool accepts booleans and strconv.ParseBool strings.
func Bool() Type { return boolType{} }

// Slice accepts a list of elem, or a single elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Object accepts a JSON object. With fields it is validated recursively.
func Object(fields Schema) Type { return objectType{fields: fields} }

// OneOf accepts one of a fixed set of strings.
func OneOf(values ...string) Type { return enumType{values: values} }

// ParseType converts a serialized type name back into a Type.
// Object field schemas do not survive serialization; "object" parses to an open object.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']' {
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	if strings.HasPrefix(name, "enum(") && strings.HasSuffix(name, ")") {
		values := strings.Split(name[len("enum("):len(name)-1], "|")
		if len(values) == 0 || values[0] == "" {
			return nil, fmt.Errorf("empty enum")
		}
		return OneOf(values...), nil
	}
	switch name {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "object":
		return Object(nil), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}

// Field is one parameter of a schema.
type Field struct {
	Type        Type
	Required    bool
	Description string
}

// Schema maps parameter names to fields.
type Schema map[string]Field

// Names returns the parameter names sorted.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
