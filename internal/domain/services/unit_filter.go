package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

// UnitEnv defines the variables available during filter expression evaluation.
type UnitEnv struct {
	ID        string   `expr:"id"`
	Name      string   `expr:"name"`
	PhaseName string   `expr:"phase_name"`
	Profiles  []string `expr:"profiles"`
	Settings  []string `expr:"settings"`
	Flags     []string `expr:"flags"`
	Phase     int      `expr:"phase"`
}

// NewUnitEnv builds the expression environment for a unit.
func NewUnitEnv(unit *entities.UnitDescriptor) UnitEnv {
	flags := make([]string, 0, len(unit.Flags()))
	for _, f := range unit.Flags() {
		flags = append(flags, string(f))
	}
	return UnitEnv{
		ID:        unit.ID().String(),
		Name:      unit.Name(),
		Phase:     unit.Phase().Int(),
		PhaseName: unit.PhaseName(),
		Profiles:  unit.Profiles(),
		Settings:  unit.Settings(),
		Flags:     flags,
	}
}

// CompileFilter compiles a --filter expression against UnitEnv.
func CompileFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(UnitEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return program, nil
}

// UnitFilter selects which loaded units take part in a run. It never
// reorders; the scheduler owns ordering.
type UnitFilter struct {
	onlyIDs         map[string]bool
	excludeIDs      map[string]bool
	includeProfiles map[string]bool
	excludeProfiles map[string]bool
	filterProgram   *vm.Program
}

// NewUnitFilter initializes a new empty filter.
func NewUnitFilter() *UnitFilter {
	return &UnitFilter{
		onlyIDs:         make(map[string]bool),
		excludeIDs:      make(map[string]bool),
		includeProfiles: make(map[string]bool),
		excludeProfiles: make(map[string]bool),
	}
}

// WithOnlyUnits restricts the run to ONLY the specified unit IDs.
// If set, all other filters are ignored.
func (f *UnitFilter) WithOnlyUnits(ids []string) *UnitFilter {
	f.onlyIDs = toSet(ids)
	return f
}

// WithExcludedUnits excludes specific unit IDs.
func (f *UnitFilter) WithExcludedUnits(ids []string) *UnitFilter {
	f.excludeIDs = toSet(ids)
	return f
}

// WithIncludedProfiles includes only units with any of these profiles.
func (f *UnitFilter) WithIncludedProfiles(profiles []string) *UnitFilter {
	f.includeProfiles = toSet(profiles)
	return f
}

// WithExcludedProfiles excludes units with any of these profiles.
func (f *UnitFilter) WithExcludedProfiles(profiles []string) *UnitFilter {
	f.excludeProfiles = toSet(profiles)
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *UnitFilter) WithFilterExpression(program *vm.Program) *UnitFilter {
	f.filterProgram = program
	return f
}

// ShouldRun evaluates whether a unit matches the filter criteria.
// It returns true if the unit is selected, along with a reason if not.
func (f *UnitFilter) ShouldRun(unit *entities.UnitDescriptor) (bool, string) {
	if len(f.onlyIDs) > 0 {
		return NewOnlyUnitsSpecification(f.onlyIDs).IsSatisfiedBy(unit)
	}

	var specs []UnitSpecification
	if len(f.excludeIDs) > 0 {
		specs = append(specs, NewExcludedUnitsSpecification(f.excludeIDs))
	}
	if len(f.excludeProfiles) > 0 {
		specs = append(specs, NewExcludedProfilesSpecification(f.excludeProfiles))
	}
	if len(f.includeProfiles) > 0 {
		specs = append(specs, NewIncludedProfilesSpecification(f.includeProfiles))
	}
	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}

	return NewAndSpecification(specs...).IsSatisfiedBy(unit)
}

// Select returns the units that pass the filter, keeping their order.
func (f *UnitFilter) Select(units []*entities.UnitDescriptor) (selected []*entities.UnitDescriptor, excluded map[string]string) {
	excluded = make(map[string]string)
	for _, u := range units {
		if ok, reason := f.ShouldRun(u); ok {
			selected = append(selected, u)
		} else {
			excluded[u.ID().String()] = reason
		}
	}
	return selected, excluded
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
