// Package validation collects field-level input errors into a structured list.
//
// Inputs are decoded into explicit request types and checked with a Validator
// before any business logic runs:
//
//	v := validation.New()
//	v.Required("title", in.Title)
//	v.Length("title", in.Title, 2, 100)
//	if err := v.Err(); err != nil {
//		return err
//	}
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a list of field errors. It implements error.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the list contains an error for field.
func (e Errors) Has(field string) bool {
	return slices.ContainsFunc(e, func(fe FieldError) bool { return fe.Field == field })
}

// Validator accumulates errors. Only the first error per field is kept.
type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{}
}

// Add records a failure for field unless one is already recorded.
func (v *Validator) Add(field, message string) {
	if v.errs.Has(field) {
		return
	}
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Required fails when value is empty after trimming.
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, fmt.Sprintf("%s is required", field))
		return false
	}
	return true
}

// Length fails when the rune count of value is outside [min, max].
// A max of zero means no upper bound.
func (v *Validator) Length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case max > 0 && min > 0 && (n < min || n > max):
		v.Add(field, fmt.Sprintf("%s must be %d-%d characters", field, min, max))
	case min > 0 && n < min:
		v.Add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	case max > 0 && n > max:
		v.Add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

// OneOf fails when value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		v.Add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
	}
}

// Email fails when value is not a bare RFC 5322 address or is longer than 254 bytes.
func (v *Validator) Email(field, value string) {
	if !IsEmail(value) {
		v.Add(field, "valid email required")
	}
}

// Password enforces the account password policy: a minimum length and at least one digit.
func (v *Validator) Password(field, value string, minLen int) {
	if utf8.RuneCountInString(value) < minLen {
		v.Add(field, fmt.Sprintf("%s must be at least %d characters", field, minLen))
		return
	}
	if !strings.ContainsFunc(value, unicode.IsDigit) {
		v.Add(field, fmt.Sprintf("%s must contain a number", field))
	}
}

// URL fails when value is not an absolute http or https URL.
func (v *Validator) URL(field, value string) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.Add(field, fmt.Sprintf("%s must be a valid URL", field))
	}
}

// Err returns the collected errors, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// IsEmail reports whether s is a plain address such as "ana@x.com".
func IsEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; only bare addresses are allowed here.
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
