package services

import (
	"fmt"

	"github.com/omniforge-dev/omniforge/internal/application/dto"
	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/services"
)

// buildUnitFilter validates selection options against the loaded units and
// compiles them into a filter.
func buildUnitFilter(units []ports.Unit, sel dto.SelectionOptions) (*services.UnitFilter, error) {
	known := knownIDs(units)

	for _, id := range sel.OnlyUnits {
		if !known[id] {
			return nil, apperrors.NewValidationError(
				"selection",
				fmt.Sprintf("--only references non-existent unit: %s", id),
			)
		}
	}
	for _, id := range sel.ExcludeUnits {
		if !known[id] {
			return nil, apperrors.NewValidationError(
				"selection",
				fmt.Sprintf("--exclude references non-existent unit: %s", id),
			)
		}
	}

	filter := services.NewUnitFilter().
		WithOnlyUnits(sel.OnlyUnits).
		WithExcludedUnits(sel.ExcludeUnits).
		WithIncludedProfiles(sel.Profiles).
		WithExcludedProfiles(sel.ExcludeProfiles)

	if sel.FilterExpression != "" {
		program, err := services.CompileFilter(sel.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError(
				"selection",
				fmt.Sprintf("invalid --filter expression: %v\nExample: phase <= 2 && 'core' in profiles", err),
			)
		}
		filter = filter.WithFilterExpression(program)
	}

	return filter, nil
}

// validateForceTargets rejects --force=<id> naming a unit that was not loaded.
func validateForceTargets(units []ports.Unit, flags *entities.RunFlags) error {
	known := knownIDs(units)
	var unknown []string
	for _, id := range flags.ForceTargets() {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return apperrors.NewValidationError("force", "--force references non-existent units", unknown...)
	}
	return nil
}

func knownIDs(units []ports.Unit) map[string]bool {
	known := make(map[string]bool, len(units))
	for _, u := range units {
		known[u.Descriptor.ID().String()] = true
	}
	return known
}
