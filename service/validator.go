package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/model"
)

// Tags for account fields. Commas are excluded because they delimit the
// flat-file account record.
const (
	usernameTag = "required,max=32,excludesall=0x2C"
	emailTag    = "required,email,max=254,excludesall=0x2C"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s any) error {
	return formatValidationError(v.validate.Struct(s), "")
}

// ValidateUsername validates a single username.
func (v *Validator) ValidateUsername(username string) error {
	return formatValidationError(v.validate.Var(username, usernameTag), "username")
}

// ValidateEmail validates a single email address.
func (v *Validator) ValidateEmail(email string) error {
	return formatValidationError(v.validate.Var(email, emailTag), "email")
}

// formatValidationError turns validator errors into one ErrInvalidInput
// with a readable message per field. name labels errors from Var.
func formatValidationError(err error, name string) error {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		if field == "" {
			field = name
		}
		var msg string
		switch e.Tag() {
		case "required":
			msg = "cannot be empty"
		case "email":
			msg = "is not a valid email"
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", e.Param())
		case "excludesall":
			msg = "contains invalid characters"
		default:
			msg = "is invalid"
		}
		msgs = append(msgs, field+" "+msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, strings.Join(msgs, "; "))
}
