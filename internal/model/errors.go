package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("invalid record")
	ErrConfiguration = errors.New("invalid configuration")
)

// ValidationError reports a malformed input record. It is raised before any
// scoring proceeds and is never coerced into a verdict.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigurationError reports an inconsistent rule base detected at load time.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Field, e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func misconfiguredf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }
