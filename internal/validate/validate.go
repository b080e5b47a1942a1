// Package validate holds the pure field validators shared by the service
// layer. Validators never touch the store; they return a typed *Error so
// callers can distinguish bad input from persistence failures.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field length bounds, matching the backing column widths.
const (
	MaxName        = 60
	MaxEmail       = 60
	MaxTaxID       = 18
	MaxCareerLevel = 30
	MaxOccupation  = 30
	MaxGender      = 15
)

// BirthDateFormats are the accepted textual birth-date layouts, tried in
// order. The first layout that parses wins.
var BirthDateFormats = []string{"2006-01-02", "02/01/2006"}

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Error reports a field-level validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Email checks shape and length of an email address.
func Email(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return newError(field, "must not be empty")
	}
	if len(value) > MaxEmail {
		return newError(field, "too long (max %d characters)", MaxEmail)
	}
	if !emailPattern.MatchString(value) {
		return newError(field, "invalid email format")
	}
	return nil
}

// RequiredString checks a mandatory bounded text field and returns the
// trimmed value.
func RequiredString(field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", newError(field, "must not be empty")
	}
	if len(value) > maxLen {
		return "", newError(field, "too long (max %d characters)", maxLen)
	}
	return value, nil
}

// OptionalString checks a bounded text field that may be blank. Blank
// input yields the fallback value.
func OptionalString(field, value string, maxLen int, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if len(value) > maxLen {
		return "", newError(field, "too long (max %d characters)", maxLen)
	}
	return value, nil
}

// ID checks a positive numeric identifier given as text. Blank input is
// not an error and yields nil, mirroring optional foreign keys.
func ID(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id < 1 {
		return nil, newError(field, "must be a positive integer")
	}
	return &id, nil
}

// Date parses a textual calendar date against BirthDateFormats. A blank
// value is the "absent" case and yields the zero time with no error; a
// supplied value that matches no layout is a validation error.
func Date(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range BirthDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, newError(field, "invalid date, use YYYY-MM-DD or DD/MM/YYYY")
}
