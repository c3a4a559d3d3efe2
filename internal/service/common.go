package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned by lookups by id.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-facing rejection. The API maps it to 422.
type ValidationError = nutrition.ValidationError

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a user-facing validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return invalid(name, "must be >= 0")
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// NormalizeDate validates a YYYY-MM-DD date. An empty value means today.
func NormalizeDate(value string, now time.Time) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.Format(dateLayout), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", invalid("date", "invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t.Format(dateLayout), nil
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
