package bvr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("invalid build configuration")

	ErrVersionRange         = errors.New("version out of range")
	ErrIdentifierFormat     = errors.New("invalid identifier")
	ErrInvalidVersionCode   = errors.New("invalid version code")
	ErrUnknownVariant       = errors.New("unknown variant")
	ErrUnresolvedReference  = errors.New("unresolved reference")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrInvalidVersionName   = errors.New("invalid version name")
	ErrDuplicateName        = errors.New("duplicate name")
	ErrVariantCycle         = errors.New("variant inheritance cycle")
	ErrIncompatibleSettings = errors.New("incompatible settings")
	ErrInvalidSourceRoot    = errors.New("invalid source root")
	ErrUnsupportedPlatform  = errors.New("unsupported platform")
)

// ConfigError reports a single violated rule of a BuildDescriptor.
// Err is one of the sentinel errors above.
type ConfigError struct {
	Err        error
	Field      string
	Value      string
	Constraint string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Constraint)
	}

	return fmt.Sprintf("%s: %s %q: %s", e.Err, e.Field, e.Value, e.Constraint)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func configError(err error, field, value, constraint string) *ConfigError {
	return &ConfigError{
		Err:        err,
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

// ConfigErrors flattens err, which may have been wrapped or produced by
// errors.Join, into the *ConfigErrors it carries.
func ConfigErrors(err error) []*ConfigError {
	switch e := err.(type) {
	case *ConfigError:
		return []*ConfigError{e}
	case interface{ Unwrap() []error }:
		cerrs := []*ConfigError{}
		for _, ee := range e.Unwrap() {
			cerrs = append(cerrs, ConfigErrors(ee)...)
		}

		return cerrs
	case interface{ Unwrap() error }:
		return ConfigErrors(e.Unwrap())
	}

	return nil
}

// ErrMismatch matches every *MismatchError.
var ErrMismatch = errors.New("artifact does not match plan")

// MismatchError reports a packaged artifact that disagrees with the plan
// it was supposedly built from.
type MismatchError struct {
	Field   string
	Planned string
	Actual  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s planned %q, artifact has %q", ErrMismatch, e.Field, e.Planned, e.Actual)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Mismatch returns a *MismatchError if planned and actual differ, else nil.
func Mismatch(field, planned, actual string) error {
	if planned == actual {
		return nil
	}

	return &MismatchError{Field: field, Planned: planned, Actual: actual}
}
