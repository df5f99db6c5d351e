package formula

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// braced matches a `{...}` placeholder, non-greedy.
var braced = regexp.MustCompile(`\{.*?\}`)

var stripper = strings.NewReplacer("{", "", "}", "", ".", "")

// Normalize strips `{`, `}` and `.` from a variable name so that a dotted
// field path such as `{sample.density}` matches the key `sampledensity`.
func Normalize(name string) string {
	return stripper.Replace(name)
}

// NormalizeExpression rewrites every brace-delimited placeholder in an
// expression with its normalized name. Text outside braces is untouched, so
// decimal points in numbers survive.
func NormalizeExpression(expression string) string {
	return braced.ReplaceAllStringFunc(expression, Normalize)
}

// isEmpty reports whether a bound value counts as unset.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Coerce converts a bound value to a number the way variable lookups do:
// numbers, booleans and numeric strings convert, while empty strings and
// anything that cannot be converted become 0.
func Coerce(v interface{}) float64 {
	return toNumber(v)
}

func toNumber(v interface{}) float64 {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}
