// Package entities contains domain entities for the OmniForge domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"fmt"
	"slices"

	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// UnitFields is the raw material a UnitDescriptor is built from. The header
// parser fills it in; NewUnitDescriptor validates and freezes it.
type UnitFields struct {
	ID          string
	Name        string
	Description string
	Phase       int
	PhaseName   string
	Profiles    []string
	Settings    []string
	Flags       []string
	Packages    []string
	DevPackages []string
	Source      string
}

// UnitDescriptor is the declarative metadata of one unit.
//
// Invariants:
// - ID is a valid UnitID
// - Phase is >= 0
// - Every package declaration parses as a PackageSpec
// - Settings keys are non-empty and unique (declared order is kept)
//
// A descriptor is immutable once loaded; accessors return copies.
type UnitDescriptor struct {
	id          values.UnitID
	name        string
	description string
	phase       values.Phase
	phaseName   string
	profiles    []string
	settings    []string
	flags       []values.FlagName
	packages    []values.PackageSpec
	devPackages []values.PackageSpec
	source      string
}

// FieldError reports which descriptor field is invalid.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewUnitDescriptor validates the fields and returns an immutable descriptor.
// Errors are *FieldError so callers can name the offending field.
func NewUnitDescriptor(f UnitFields) (*UnitDescriptor, error) {
	id, err := values.NewUnitID(f.ID)
	if err != nil {
		return nil, &FieldError{Field: "id", Reason: err.Error()}
	}
	phase, err := values.NewPhase(f.Phase)
	if err != nil {
		return nil, &FieldError{Field: "phase", Reason: err.Error()}
	}

	d := &UnitDescriptor{
		id:          id,
		name:        f.Name,
		description: f.Description,
		phase:       phase,
		phaseName:   f.PhaseName,
		profiles:    dedupe(f.Profiles),
		source:      f.Source,
	}
	if d.name == "" {
		d.name = id.String()
	}

	seen := make(map[string]bool, len(f.Settings))
	for _, key := range f.Settings {
		if key == "" {
			return nil, &FieldError{Field: "settings", Reason: "setting key cannot be empty"}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		d.settings = append(d.settings, key)
	}

	for _, raw := range dedupe(f.Flags) {
		name, err := values.NewFlagName(raw)
		if err != nil {
			return nil, &FieldError{Field: "flags", Reason: err.Error()}
		}
		d.flags = append(d.flags, name)
	}

	if d.packages, err = parseSpecs(f.Packages); err != nil {
		return nil, &FieldError{Field: "dependencies.packages", Reason: err.Error()}
	}
	if d.devPackages, err = parseSpecs(f.DevPackages); err != nil {
		return nil, &FieldError{Field: "dependencies.dev_packages", Reason: err.Error()}
	}

	return d, nil
}

// MustNewUnitDescriptor builds a descriptor or panics (for tests only)
func MustNewUnitDescriptor(f UnitFields) *UnitDescriptor {
	d, err := NewUnitDescriptor(f)
	if err != nil {
		panic(err)
	}
	return d
}

// ID returns the unit identity.
func (d *UnitDescriptor) ID() values.UnitID { return d.id }

// Name returns the display name (defaults to the ID).
func (d *UnitDescriptor) Name() string { return d.name }

// Description returns the optional free-text description.
func (d *UnitDescriptor) Description() string { return d.description }

// Phase returns the ordering phase.
func (d *UnitDescriptor) Phase() values.Phase { return d.phase }

// PhaseName returns the phase label. It has no effect on ordering.
func (d *UnitDescriptor) PhaseName() string { return d.phaseName }

// Source returns the file the descriptor was parsed from, if any.
func (d *UnitDescriptor) Source() string { return d.source }

// Profiles returns the profile tags used for selection.
func (d *UnitDescriptor) Profiles() []string { return slices.Clone(d.profiles) }

// Settings returns the settings keys the unit reads, in declared order.
func (d *UnitDescriptor) Settings() []string { return slices.Clone(d.settings) }

// Flags returns the CLI flags the unit recognizes.
func (d *UnitDescriptor) Flags() []values.FlagName { return slices.Clone(d.flags) }

// Packages returns the runtime package dependencies.
func (d *UnitDescriptor) Packages() []values.PackageSpec { return slices.Clone(d.packages) }

// DevPackages returns the development package dependencies.
func (d *UnitDescriptor) DevPackages() []values.PackageSpec { return slices.Clone(d.devPackages) }

// HasProfile reports whether the unit carries the given profile tag.
func (d *UnitDescriptor) HasProfile(tag string) bool {
	return slices.Contains(d.profiles, tag)
}

// RecognizesFlag reports whether the unit declared the flag.
func (d *UnitDescriptor) RecognizesFlag(name values.FlagName) bool {
	return slices.Contains(d.flags, name)
}

func parseSpecs(raw []string) ([]values.PackageSpec, error) {
	var specs []values.PackageSpec
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		spec, err := values.ParsePackageSpec(r)
		if err != nil {
			return nil, err
		}
		if seen[spec.Name()] {
			continue
		}
		seen[spec.Name()] = true
		specs = append(specs, spec)
	}
	return specs, nil
}

func dedupe(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
