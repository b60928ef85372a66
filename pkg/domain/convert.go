package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToString renders a property value for display and substring matching.
func ToString(v any) string {
	if v == nil {
		return ""
	}
	return stringify(v)
}

// ToFloat converts numeric-looking property values. Strings such as "12,5" and
// "12.5 m2" are accepted; the leading number is used.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if fields := strings.Fields(s); len(fields) > 0 {
			s = fields[0]
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
