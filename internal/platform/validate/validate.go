// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Struct-tag rules (required, max, latitude, ...) run through go-playground's
// validator via [Struct]. Rules that need domain knowledge, such as identifier
// prefixes, are expressed with the fluent [Validator]. Both produce the same
// VALIDATION_ERROR envelope.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/osg-htc/institutions/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

	engine     *validator.Validate
	engineOnce sync.Once
)

// # Struct Validation

// Struct validates s against its `validate` struct tags.
// Field names in the returned details follow the `json` tags.
func Struct(s any) error {
	err := structEngine().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}

	details := make([]apperr.FieldError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, apperr.FieldError{
			Field:   fieldErr.Field(),
			Message: describe(fieldErr),
		})
	}
	return apperr.ValidationError("Validation failed", details...)
}

func structEngine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return engine
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Maximum %s characters", fieldErr.Param())
	case "latitude":
		return "Must be a latitude between -90 and 90"
	case "longitude":
		return "Must be a longitude between -180 and 180"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fieldErr.Param())
	case "numeric":
		return "Must contain digits only"
	case "startswith":
		return fmt.Sprintf("Must start with '%s'", fieldErr.Param())
	default:
		return "Invalid value"
	}
}

// # Fluent Validation

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Prefix fails if a non-empty value does not start with prefix.
func (v *Validator) Prefix(field, value, prefix string) *Validator {
	if value != "" && !strings.HasPrefix(value, prefix) {
		v.add(field, fmt.Sprintf("Must be empty or start with '%s'", prefix))
	}
	return v
}

// Digits fails if a non-empty value is not exactly n ASCII digits.
func (v *Validator) Digits(field, value string, n int) *Validator {
	if value == "" {
		return v
	}
	if len(value) != n || strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		v.add(field, fmt.Sprintf("Must be a %d-digit number", n))
	}
	return v
}

// Between fails if a present value is outside [min, max] (inclusive).
func (v *Validator) Between(field string, value *float64, min, max float64) *Validator {
	if value != nil && (*value < min || *value > max) {
		v.add(field, fmt.Sprintf("Must be between %g and %g", min, max))
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("latitude", lat != nil && lon == nil, "latitude and longitude must be set together")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
