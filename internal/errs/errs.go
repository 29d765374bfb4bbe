// Package errs declares the error taxonomy shared by every descriptor package.
// Each failure wraps exactly one of the sentinels below, so callers branch on
// the category with errors.Is and still see the detailed message.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a setter or constructor receives a value
	// that violates a field invariant.
	ErrValidation = errors.New("validation error")
	// ErrSerialization is returned when a required sub-object is missing at
	// wire-build time or the document fails schema validation.
	ErrSerialization = errors.New("serialization error")
	// ErrCache is returned for filesystem or artifact failures in the
	// resource cache.
	ErrCache = errors.New("cache error")
	// ErrEnum is returned when a value or name is outside a closed set.
	ErrEnum = errors.New("invalid enum value")
)

// Validation builds an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

// Serialization builds an ErrSerialization with a formatted message.
func Serialization(format string, args ...any) error {
	return wrap(ErrSerialization, format, args...)
}

// Cache builds an ErrCache with a formatted message. A trailing %w in the
// format keeps the underlying cause reachable through errors.Is/As.
func Cache(format string, args ...any) error {
	return wrap(ErrCache, format, args...)
}

// Enum builds an ErrEnum with a formatted message.
func Enum(format string, args ...any) error {
	return wrap(ErrEnum, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}
