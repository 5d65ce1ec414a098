package common

import (
	"fmt"
	"strings"
)

// ValidationError is one rejected input, usually a command-line flag.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid '%s' (%v): %s", e.Field, e.Value, e.Message)
}

// ValidationRule inspects one value and returns nil when it is acceptable.
type ValidationRule func(field string, value any) *ValidationError

// Validator collects every failure so a command can report them together.
type Validator struct {
	errs []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs rules against value and records each failure.
func (v *Validator) Field(field string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if fail := rule(field, value); fail != nil {
			v.errs = append(v.errs, *fail)
		}
	}
	return v
}

// Check records a failure when ok is false.
func (v *Validator) Check(ok bool, field string, value any, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, ValidationError{Field: field, Value: value, Message: message})
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errs }

// Error wraps ErrValidation with every collected message, or returns nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

func (v *Validator) ErrorMessage() string {
	msgs := make([]string, 0, len(v.errs))
	for _, e := range v.errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Required rejects nil and blank strings.
func Required(field string, value any) *ValidationError {
	blank := value == nil
	switch s := value.(type) {
	case string:
		blank = strings.TrimSpace(s) == ""
	case *string:
		blank = s == nil || strings.TrimSpace(*s) == ""
	}
	if blank {
		return &ValidationError{Field: field, Value: value, Message: "is required"}
	}
	return nil
}

// Positive rejects ints below 1.
func Positive(field string, value any) *ValidationError {
	n, ok := value.(int)
	switch {
	case !ok:
		return &ValidationError{Field: field, Value: value, Message: "must be an integer"}
	case n < 1:
		return &ValidationError{Field: field, Value: value, Message: "must be at least 1"}
	}
	return nil
}
