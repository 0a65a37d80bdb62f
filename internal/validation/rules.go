package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DateLayouts are accepted by the Date rule, most specific first.
var DateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

var (
	// Optional skips the remaining rules of a field whose value is absent.
	Optional = Rule{Name: "optional", Expect: "optional", optional: true}

	NonEmptyString = Rule{
		Name:   "nonEmptyString",
		Expect: "nonEmptyString",
		Violated: func(v any) bool {
			s, ok := v.(string)
			return !ok || strings.TrimSpace(s) == ""
		},
	}

	Boolean = Rule{
		Name:   "boolean",
		Expect: "boolean",
		Violated: func(v any) bool {
			_, ok := v.(bool)
			return !ok
		},
	}

	Numeric = Rule{
		Name:   "numeric",
		Expect: "numeric",
		Violated: func(v any) bool {
			_, ok := toFloat(v)
			return !ok
		},
	}

	UUID = Rule{
		Name:   "uuid",
		Expect: "uuid",
		Violated: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			_, err := uuid.Parse(s)
			return err != nil
		},
	}

	Email = Rule{
		Name:   "email",
		Expect: "email",
		Violated: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			addr, err := mail.ParseAddress(s)
			return err != nil || addr.Address != s
		},
	}

	Date = Rule{
		Name:   "date",
		Expect: "date",
		Violated: func(v any) bool {
			switch d := v.(type) {
			case time.Time:
				return d.IsZero()
			case string:
				_, err := ParseDate(d)
				return err != nil
			}
			return true
		},
	}
)

// Length requires a string whose rune count lies in [min, max].
func Length(min, max int) Rule {
	return Rule{
		Name:   "length",
		Expect: fmt.Sprintf("string with length between %d and %d", min, max),
		Violated: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			n := utf8.RuneCountInString(s)
			return n < min || n > max
		},
	}
}

// IntRange requires an integer in [min, max]. Strings must be plain
// decimal integers as strconv.Atoi reads them.
func IntRange(min, max int) Rule {
	return Rule{
		Name:   "intRange",
		Expect: fmt.Sprintf("number between %d and %d", min, max),
		Violated: func(v any) bool {
			n, ok := toInt(v)
			return !ok || n < min || n > max
		},
	}
}

// OneOf requires a string equal to one of values. cmp replaces plain
// equality when not nil.
func OneOf(values []string, cmp func(got, want string) bool) Rule {
	if cmp == nil {
		cmp = func(got, want string) bool { return got == want }
	}
	return Rule{
		Name:   "oneOf",
		Expect: "one of [" + strings.Join(values, ", ") + "]",
		Violated: func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			for _, want := range values {
				if cmp(s, want) {
					return false
				}
			}
			return true
		},
	}
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	var last error
	for _, l := range DateLayouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t, nil
		}
		last = err
	}
	return time.Time{}, last
}

func toInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
