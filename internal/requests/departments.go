package requests

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NormalizeDepartments accepts the three shapes clients send for target
// departments and returns a canonical slice:
//
//	["IT", "HR"]                      a plain array
//	{"departments": ["IT", "HR"]}     a wrapper object
//	"IT, HR" or "[\"IT\",\"HR\"]"     a comma-separated or JSON string
//
// Entries are trimmed and empty entries dropped. The result is never nil.
func NormalizeDepartments(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanDepartments(val)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return cleanDepartments(out)
	case map[string]interface{}:
		return NormalizeDepartments(val["departments"])
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return []string{}
		}
		if strings.HasPrefix(s, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				return cleanDepartments(arr)
			}
		}
		return cleanDepartments(strings.Split(s, ","))
	default:
		return []string{}
	}
}

func cleanDepartments(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseBool coerces the loose truthy values clients send for flags. Accepts
// bools, numbers and the strings "1", "true", "yes", "on" (case-insensitive).
func ParseBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// ParseInt coerces numeric form values that may arrive as JSON numbers or
// strings. Returns 0 when the value cannot be interpreted.
func ParseInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return 0
}
