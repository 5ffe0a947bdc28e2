package source

import (
	"fmt"
	"strconv"
)

// Record is one field mapping produced by a stream. Values carry the loose
// typing of the underlying data: JSON numbers arrive as float64, lists as
// []any, parquet lists as []string.
type Record map[string]any

// String returns the value under key rendered as text, or "" when absent or
// null. Numeric values are stringified, matching sources that store the same
// column as a number in some rows and text in others.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the value under key as a float64 when it is numeric or
// numeric text.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int returns the value under key truncated to an int, or 0 when absent or
// non-numeric.
func (r Record) Int(key string) int {
	f, ok := r.Float(key)
	if !ok {
		return 0
	}
	return int(f)
}

// Bool returns the value under key as a boolean; absent and null are false.
func (r Record) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

// Strings returns the value under key as a list of rendered elements. Scalar
// values become a one-element list; null elements render as empty strings.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				out = append(out, "")
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{r.String(key)}
	}
}
