package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// User-facing messages. They are returned verbatim to the visitor.
const (
	MsgAllFieldsRequired = "All fields are required"
	MsgInvalidEmail      = "Invalid email format"
	MsgMessageTooShort   = "Message must be at least 10 characters long"
)

// rulePriority orders violations so a missing field always wins over a malformed one,
// whatever the struct field order.
var rulePriority = map[string]int{
	"required":      0,
	"notblank":      0,
	"contact_email": 1,
	"min_trimmed":   2,
}

// FirstViolation converts validator.ValidationErrors to the single highest-priority message
func FirstViolation(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}

	first := validationErrors[0]
	for _, e := range validationErrors[1:] {
		if priority(e.Tag()) < priority(first.Tag()) {
			first = e
		}
	}
	return formatSingleError(first)
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return MsgAllFieldsRequired
	case "contact_email", "email":
		return MsgInvalidEmail
	case "min_trimmed":
		if e.Field() == "Message" && e.Param() == "10" {
			return MsgMessageTooShort
		}
		return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", e.Field(), e.Tag())
	}
}

func priority(tag string) int {
	if p, ok := rulePriority[tag]; ok {
		return p
	}
	return len(rulePriority)
}
