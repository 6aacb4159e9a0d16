// Package validation checks user form input before it reaches the store.
package validation

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/useradmin/useradmin/internal/model"
)

// Fields reported in FieldError.Field.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Error codes reported in FieldError.Code.
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeComplexity    = "complexity"
	CodeTaken         = "taken"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 5

var messages = map[string]string{
	CodeRequired:      "Name is required",
	CodeInvalidFormat: "Email is not valid",
	CodeTooShort:      "Password must be at least 5 characters",
	CodeTooLong:       "Password is too long",
	CodeComplexity:    "Password must contain at least one uppercase letter and one special character",
	CodeTaken:         "Email is already registered",
}

// FieldError is a single rule violation.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// NewFieldError builds a FieldError with the standard message for code.
func NewFieldError(field, code string) FieldError {
	return FieldError{Field: field, Code: code, Message: messages[code]}
}

// Errors is the list of violations for one submission.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed with code.
func (e Errors) Has(field, code string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// Fields returns the distinct fields that failed, in report order.
func (e Errors) Fields() []string {
	seen := make(map[string]bool, len(e))
	var out []string
	for _, fe := range e {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			out = append(out, fe.Field)
		}
	}
	return out
}

// Input holds raw form values for a new user.
type Input struct {
	Name     string
	Email    string
	Password string
}

// Validator applies the user field rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the password complexity rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("complexity", passwordComplexity); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// Validate checks all three fields. It returns nil when the input is valid.
func (v *Validator) Validate(in Input) Errors {
	var errs Errors
	errs = append(errs, v.checkName(in.Name)...)
	errs = append(errs, v.checkEmail(in.Email)...)
	errs = append(errs, v.checkPassword(in.Password)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidatePatch checks only the fields present in p.
func (v *Validator) ValidatePatch(p model.UserPatch) Errors {
	var errs Errors
	if p.Name != nil {
		errs = append(errs, v.checkName(*p.Name)...)
	}
	if p.Email != nil {
		errs = append(errs, v.checkEmail(*p.Email)...)
	}
	if p.Password != nil {
		errs = append(errs, v.checkPassword(*p.Password)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) checkName(name string) Errors {
	if err := v.validate.Var(name, "required"); err != nil {
		return Errors{NewFieldError(FieldName, CodeRequired)}
	}
	return nil
}

func (v *Validator) checkEmail(email string) Errors {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return Errors{NewFieldError(FieldEmail, CodeInvalidFormat)}
	}
	return nil
}

// checkPassword reports length and complexity independently.
func (v *Validator) checkPassword(password string) Errors {
	var errs Errors
	if err := v.validate.Var(password, "min="+strconv.Itoa(MinPasswordLength)); err != nil {
		errs = append(errs, NewFieldError(FieldPassword, CodeTooShort))
	}
	if err := v.validate.Var(password, "complexity"); err != nil {
		errs = append(errs, NewFieldError(FieldPassword, CodeComplexity))
	}
	return errs
}

// passwordComplexity requires an ASCII uppercase letter and a character
// outside [a-zA-Z0-9].
func passwordComplexity(fl validator.FieldLevel) bool {
	var upper, special bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		default:
			special = true
		}
	}
	return upper && special
}
