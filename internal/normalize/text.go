package normalize

import (
	"html"
	"strconv"
	"strings"
)

// NormSpace collapses all whitespace runs to single spaces and trims the ends.
func NormSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanText decodes HTML entities and normalizes whitespace. This is the
// canonical cleanup applied to every human-readable string pulled from a
// dataset payload.
func CleanText(s string) string {
	return NormSpace(html.UnescapeString(s))
}

// CleanTextPtr is CleanText with an empty-means-absent result.
func CleanTextPtr(s string) *string {
	cleaned := CleanText(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// ToNumber coerces a decoded JSON value to a float64. Strings holding numeric
// text count; everything else reports false. Upstream authoring tools emit
// numbers and numeric strings interchangeably.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToInt coerces a decoded JSON value to an integer; non-integral numbers
// report false.
func ToInt(v any) (int, bool) {
	f, ok := ToNumber(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// ValueText renders a decoded JSON scalar the way it should appear in a
// citation: numbers without a trailing ".0", everything else via CleanText.
func ValueText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return CleanText(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return CleanText(strings.TrimSpace(stringify(v)))
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}
