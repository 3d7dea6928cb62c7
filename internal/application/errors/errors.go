// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names an error class in reports and logs.
type Kind string

// Error kinds surfaced to the user.
const (
	KindMalformedMetadata      Kind = "MalformedMetadata"
	KindDuplicateUnitIdentity  Kind = "DuplicateUnitIdentity"
	KindMissingRequiredSetting Kind = "MissingRequiredSetting"
	KindInstallFailure         Kind = "InstallFailure"
	KindUnitExecutionFailure   Kind = "UnitExecutionFailure"
	KindLedgerFailure          Kind = "LedgerFailure"
	KindValidation             Kind = "Validation"
	KindConfiguration          Kind = "Configuration"
	KindInternal               Kind = "Internal"
)

// Kinded is implemented by every error in this package.
type Kinded interface {
	error
	Kind() Kind
}

// UnitFailure is implemented by errors raised while running one unit.
type UnitFailure interface {
	error
	FailedUnit() string
}

// FailedUnit returns the ID of the unit err was raised for, or "" when err
// is not tied to a unit.
func FailedUnit(err error) string {
	var uf UnitFailure
	if errors.As(err, &uf) {
		return uf.FailedUnit()
	}
	return ""
}

// KindOf returns the kind of the first typed error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// MalformedMetadataError indicates a unit header is missing or has an
// invalid field. It fails the load before anything runs.
type MalformedMetadataError struct {
	Cause  error
	Source string // File the header came from
	Field  string // Offending field, empty when the block itself is broken
	Reason string
}

func (e *MalformedMetadataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed metadata in %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed metadata in %s: field %q: %s", e.Source, e.Field, e.Reason)
}

func (e *MalformedMetadataError) Unwrap() error { return e.Cause }

// Kind implements Kinded.
func (e *MalformedMetadataError) Kind() Kind { return KindMalformedMetadata }

// NewMalformedMetadataError creates a new malformed metadata error.
func NewMalformedMetadataError(source, field, reason string, cause error) *MalformedMetadataError {
	return &MalformedMetadataError{
		Source: source,
		Field:  field,
		Reason: reason,
		Cause:  cause,
	}
}

// DuplicateUnitIdentityError indicates two units declare the same ID.
type DuplicateUnitIdentityError struct {
	ID     string
	First  string
	Second string
}

func (e *DuplicateUnitIdentityError) Error() string {
	return fmt.Sprintf("duplicate unit identity %q: declared by %s and %s", e.ID, e.First, e.Second)
}

// Kind implements Kinded.
func (e *DuplicateUnitIdentityError) Kind() Kind { return KindDuplicateUnitIdentity }

// NewDuplicateUnitIdentityError creates a new duplicate identity error.
func NewDuplicateUnitIdentityError(id, first, second string) *DuplicateUnitIdentityError {
	return &DuplicateUnitIdentityError{ID: id, First: first, Second: second}
}

// MissingRequiredSettingError indicates a declared settings key resolved to
// nothing. It is raised before the unit has any side effect.
type MissingRequiredSettingError struct {
	UnitID string
	Key    string
}

func (e *MissingRequiredSettingError) Error() string {
	return fmt.Sprintf("unit %s: required setting %s is not set", e.UnitID, e.Key)
}

// Kind implements Kinded.
func (e *MissingRequiredSettingError) Kind() Kind { return KindMissingRequiredSetting }

// FailedUnit implements UnitFailure.
func (e *MissingRequiredSettingError) FailedUnit() string { return e.UnitID }

// NewMissingRequiredSettingError creates a new missing setting error.
func NewMissingRequiredSettingError(unitID, key string) *MissingRequiredSettingError {
	return &MissingRequiredSettingError{UnitID: unitID, Key: key}
}

// InstallFailureError indicates the package manager failed.
type InstallFailureError struct {
	Cause    error
	UnitID   string
	Packages []string
}

func (e *InstallFailureError) Error() string {
	msg := fmt.Sprintf("unit %s: installing %s failed", e.UnitID, strings.Join(e.Packages, ", "))
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *InstallFailureError) Unwrap() error { return e.Cause }

// Kind implements Kinded.
func (e *InstallFailureError) Kind() Kind { return KindInstallFailure }

// FailedUnit implements UnitFailure.
func (e *InstallFailureError) FailedUnit() string { return e.UnitID }

// NewInstallFailureError creates a new install failure error.
func NewInstallFailureError(unitID string, packages []string, cause error) *InstallFailureError {
	return &InstallFailureError{UnitID: unitID, Packages: packages, Cause: cause}
}

// UnitExecutionFailureError indicates the unit body reported failure.
type UnitExecutionFailureError struct {
	Cause    error
	UnitID   string
	ExitCode int // -1 when the body did not exit with a status
}

func (e *UnitExecutionFailureError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("unit %s failed with exit code %d", e.UnitID, e.ExitCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("unit %s failed: %v", e.UnitID, e.Cause)
	}
	return fmt.Sprintf("unit %s failed", e.UnitID)
}

func (e *UnitExecutionFailureError) Unwrap() error { return e.Cause }

// Kind implements Kinded.
func (e *UnitExecutionFailureError) Kind() Kind { return KindUnitExecutionFailure }

// FailedUnit implements UnitFailure.
func (e *UnitExecutionFailureError) FailedUnit() string { return e.UnitID }

// NewUnitExecutionFailureError creates a new execution failure error.
func NewUnitExecutionFailureError(unitID string, exitCode int, cause error) *UnitExecutionFailureError {
	return &UnitExecutionFailureError{UnitID: unitID, ExitCode: exitCode, Cause: cause}
}

// LedgerFailureError indicates the ledger could not be read before a unit
// ran or could not record its success afterwards.
type LedgerFailureError struct {
	Cause  error
	UnitID string
	Op     string // "read" or "write"
}

func (e *LedgerFailureError) Error() string {
	return fmt.Sprintf("unit %s: ledger %s failed: %v", e.UnitID, e.Op, e.Cause)
}

func (e *LedgerFailureError) Unwrap() error { return e.Cause }

// Kind implements Kinded.
func (e *LedgerFailureError) Kind() Kind { return KindLedgerFailure }

// FailedUnit implements UnitFailure.
func (e *LedgerFailureError) FailedUnit() string { return e.UnitID }

// NewLedgerFailureError creates a new ledger failure error.
func NewLedgerFailureError(unitID, op string, cause error) *LedgerFailureError {
	return &LedgerFailureError{UnitID: unitID, Op: op, Cause: cause}
}

// ValidationError indicates flag or selection validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%s)", e.Field, e.Message, strings.Join(e.Details, "; "))
}

// Kind implements Kinded.
func (e *ValidationError) Kind() Kind { return KindValidation }

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Kind implements Kinded.
func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
