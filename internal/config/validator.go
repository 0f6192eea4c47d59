// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration against schema rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateTags(cfg, errs)
	v.validateDurations(cfg, errs)
	v.validateWatch(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// validateTags runs the struct tag rules and converts failures to FieldErrors.
func (v *Validator) validateTags(cfg *Config, errs *ValidationError) {
	err := v.validate.Struct(cfg)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("config", err.Error())
		return
	}

	for _, fe := range verrs {
		// Namespace is "Config.server.port"; drop the root type name.
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		errs.Add(field, tagMessage(fe))
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid value '%v', must be one of: %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hostname|ip":
		return fmt.Sprintf("invalid host '%v'", fe.Value())
	default:
		return fmt.Sprintf("failed '%s' check", fe.Tag())
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	if cfg.Watch.Debounce != "" {
		d, err := parseDurationWithDays(cfg.Watch.Debounce)
		if err != nil {
			errs.Add("watch.debounce", fmt.Sprintf("invalid duration format: %s", err))
		} else if d < 0 {
			errs.Add("watch.debounce", "must be positive")
		}
	}

	if cfg.Reports.MaxAge != "" {
		d, err := parseDurationWithDays(cfg.Reports.MaxAge)
		if err != nil {
			errs.Add("reports.max_age", fmt.Sprintf("invalid duration format: %s", err))
		} else if d <= 0 {
			errs.Add("reports.max_age", "must be positive")
		}
	}

	if cfg.Events.MaxAge != "" {
		d, err := parseDurationWithDays(cfg.Events.MaxAge)
		if err != nil {
			errs.Add("events.max_age", fmt.Sprintf("invalid duration format: %s", err))
		} else if d <= 0 {
			errs.Add("events.max_age", "must be positive")
		}
	}
}

func (v *Validator) validateWatch(cfg *Config, errs *ValidationError) {
	if cfg.Watch.OutputDir != "" && cfg.Watch.OutputDir == cfg.Watch.Dir {
		errs.Add("watch.output_dir", "must differ from watch.dir")
	}
}
