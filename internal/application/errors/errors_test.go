package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{"malformed", apperrors.NewMalformedMetadataError("a.sh", "phase", "must be >= 0", nil), apperrors.KindMalformedMetadata},
		{"duplicate", apperrors.NewDuplicateUnitIdentityError("a", "a.sh", "b.sh"), apperrors.KindDuplicateUnitIdentity},
		{"missing setting", apperrors.NewMissingRequiredSettingError("a", "REDIS_URL"), apperrors.KindMissingRequiredSetting},
		{"install", apperrors.NewInstallFailureError("a", []string{"redis"}, errors.New("exit 1")), apperrors.KindInstallFailure},
		{"execution", apperrors.NewUnitExecutionFailureError("a", 2, nil), apperrors.KindUnitExecutionFailure},
		{"ledger", apperrors.NewLedgerFailureError("a", "write", errors.New("disk full")), apperrors.KindLedgerFailure},
		{"validation", apperrors.NewValidationError("force", "unknown unit"), apperrors.KindValidation},
		{"configuration", apperrors.NewConfigurationError("ledger", "unreadable", nil), apperrors.KindConfiguration},
		{"wrapped", fmt.Errorf("running: %w", apperrors.NewUnitExecutionFailureError("a", 1, nil)), apperrors.KindUnitExecutionFailure},
		{"plain", errors.New("boom"), apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`malformed metadata in scripts/a.sh: field "id": is required`,
		apperrors.NewMalformedMetadataError("scripts/a.sh", "id", "is required", nil).Error())
	assert.Equal(t,
		"malformed metadata in scripts/a.sh: unterminated header",
		apperrors.NewMalformedMetadataError("scripts/a.sh", "", "unterminated header", nil).Error())
	assert.Equal(t,
		`duplicate unit identity "a": declared by x.sh and y.sh`,
		apperrors.NewDuplicateUnitIdentityError("a", "x.sh", "y.sh").Error())
	assert.Equal(t,
		"unit redis-setup: required setting REDIS_PORT is not set",
		apperrors.NewMissingRequiredSettingError("redis-setup", "REDIS_PORT").Error())
	assert.Equal(t,
		"unit a: installing redis, zod failed: exit status 1",
		apperrors.NewInstallFailureError("a", []string{"redis", "zod"}, errors.New("exit status 1")).Error())
	assert.Equal(t,
		"unit a failed with exit code 3",
		apperrors.NewUnitExecutionFailureError("a", 3, nil).Error())
	assert.Equal(t,
		"unit a failed: boom",
		apperrors.NewUnitExecutionFailureError("a", -1, errors.New("boom")).Error())
	assert.Equal(t,
		"unit a: ledger write failed: disk full",
		apperrors.NewLedgerFailureError("a", "write", errors.New("disk full")).Error())
}

func TestFailedUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"execution", apperrors.NewUnitExecutionFailureError("a", 1, nil), "a"},
		{"install", apperrors.NewInstallFailureError("b", nil, nil), "b"},
		{"missing setting", apperrors.NewMissingRequiredSettingError("c", "K"), "c"},
		{"ledger", fmt.Errorf("run: %w", apperrors.NewLedgerFailureError("d", "write", errors.New("x"))), "d"},
		{"not unit scoped", apperrors.NewConfigurationError("ledger", "unreadable", nil), ""},
		{"plain", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.FailedUnit(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("npm exited 1")
	err := fmt.Errorf("run: %w", apperrors.NewInstallFailureError("a", []string{"redis"}, cause))

	assert.ErrorIs(t, err, cause)

	var installErr *apperrors.InstallFailureError
	assert.True(t, errors.As(err, &installErr))
	assert.Equal(t, []string{"redis"}, installErr.Packages)
}
