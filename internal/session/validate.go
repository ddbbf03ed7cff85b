package session

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// MinPasswordLength is the shortest password accepted by the forms.
const MinPasswordLength = 6

// Form field names used as ValidationError keys.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldPhone           = "phone"
)

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string
	Password string
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

// ValidationError reports form fields that failed client-side checks.
// No network call is made for a form that fails validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// NormalizePhone keeps only the digits of raw.
func NormalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)
}

// Validate checks the sign-in form.
func (f LoginForm) Validate() error {
	fields := make(map[string]string)
	checkCredentials(fields, f.Email, f.Password)
	return asError(fields)
}

// Validate checks the sign-up form. Phone is expected to be normalized.
func (f RegisterForm) Validate() error {
	fields := make(map[string]string)
	checkCredentials(fields, f.Email, f.Password)

	if f.Name == "" {
		fields[FieldName] = "Name is required"
	}

	switch {
	case f.Phone == "":
		fields[FieldPhone] = "Phone number is required"
	case !phonePattern.MatchString(f.Phone):
		fields[FieldPhone] = "Phone number must be exactly 10 digits"
	}

	switch {
	case f.ConfirmPassword == "":
		fields[FieldConfirmPassword] = "Please confirm your password"
	case f.Password != f.ConfirmPassword:
		fields[FieldConfirmPassword] = "Passwords do not match"
	}

	return asError(fields)
}

func checkCredentials(fields map[string]string, email, password string) {
	switch {
	case email == "":
		fields[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		fields[FieldEmail] = "Email is invalid"
	}

	switch {
	case password == "":
		fields[FieldPassword] = "Password is required"
	case len(password) < MinPasswordLength:
		fields[FieldPassword] = "Password must be at least 6 characters"
	}
}

func asError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
