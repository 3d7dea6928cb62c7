package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

// UnitSpecification defines a condition that a unit must meet to be selected.
type UnitSpecification interface {
	// IsSatisfiedBy checks if the unit meets the specification.
	// Returns true if satisfied, along with a reason if not (or empty if satisfied).
	IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []UnitSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...UnitSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	for _, spec := range s.specs {
		if satisfied, reason := spec.IsSatisfiedBy(unit); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// OnlyUnitsSpecification includes only the listed unit IDs.
type OnlyUnitsSpecification struct {
	ids map[string]bool
}

// NewOnlyUnitsSpecification creates a new OnlyUnitsSpecification.
func NewOnlyUnitsSpecification(ids map[string]bool) *OnlyUnitsSpecification {
	return &OnlyUnitsSpecification{ids: ids}
}

// IsSatisfiedBy checks if the unit ID is in the list.
func (s *OnlyUnitsSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	if len(s.ids) == 0 || s.ids[unit.ID().String()] {
		return true, ""
	}
	return false, "excluded by --only"
}

// ExcludedUnitsSpecification excludes the listed unit IDs.
type ExcludedUnitsSpecification struct {
	ids map[string]bool
}

// NewExcludedUnitsSpecification creates a new ExcludedUnitsSpecification.
func NewExcludedUnitsSpecification(ids map[string]bool) *ExcludedUnitsSpecification {
	return &ExcludedUnitsSpecification{ids: ids}
}

// IsSatisfiedBy checks if the unit ID is NOT in the excluded list.
func (s *ExcludedUnitsSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	if s.ids[unit.ID().String()] {
		return false, "excluded by --exclude"
	}
	return true, ""
}

// IncludedProfilesSpecification includes units carrying ANY of the profiles.
type IncludedProfilesSpecification struct {
	profiles map[string]bool
}

// NewIncludedProfilesSpecification creates a new IncludedProfilesSpecification.
func NewIncludedProfilesSpecification(profiles map[string]bool) *IncludedProfilesSpecification {
	return &IncludedProfilesSpecification{profiles: profiles}
}

// IsSatisfiedBy checks if the unit has any included profile.
func (s *IncludedProfilesSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	if len(s.profiles) == 0 {
		return true, ""
	}
	for _, p := range unit.Profiles() {
		if s.profiles[p] {
			return true, ""
		}
	}
	return false, "excluded by --profile filter"
}

// ExcludedProfilesSpecification excludes units carrying any of the profiles.
type ExcludedProfilesSpecification struct {
	profiles map[string]bool
}

// NewExcludedProfilesSpecification creates a new ExcludedProfilesSpecification.
func NewExcludedProfilesSpecification(profiles map[string]bool) *ExcludedProfilesSpecification {
	return &ExcludedProfilesSpecification{profiles: profiles}
}

// IsSatisfiedBy checks if the unit has NONE of the excluded profiles.
func (s *ExcludedProfilesSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	for _, p := range unit.Profiles() {
		if s.profiles[p] {
			return false, fmt.Sprintf("excluded by --exclude-profile %s", p)
		}
	}
	return true, ""
}

// ExpressionSpecification filters units using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the unit.
func (s *ExpressionSpecification) IsSatisfiedBy(unit *entities.UnitDescriptor) (bool, string) {
	if s.program == nil {
		return true, ""
	}

	output, err := expr.Run(s.program, NewUnitEnv(unit))
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by --filter expression"
	}
	return true, ""
}
