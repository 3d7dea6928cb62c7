package values

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// PackageSpec is a declared package dependency: a name and an optional
// semver constraint, written "name" or "name@constraint". Scoped names such
// as "@types/node@^20" are supported.
type PackageSpec struct {
	name       string
	constraint string
}

// ParsePackageSpec parses and validates a package declaration.
func ParsePackageSpec(raw string) (PackageSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PackageSpec{}, fmt.Errorf("package spec cannot be empty")
	}

	name, constraint := raw, ""
	// The first character of a scoped name is '@', so only look for a
	// version separator after it.
	if idx := strings.LastIndex(raw, "@"); idx > 0 {
		name, constraint = raw[:idx], raw[idx+1:]
	}

	if name == "" || strings.ContainsAny(name, " \t") {
		return PackageSpec{}, fmt.Errorf("invalid package name in %q", raw)
	}
	if strings.HasPrefix(name, "@") && !strings.Contains(name, "/") {
		return PackageSpec{}, fmt.Errorf("scoped package %q must be @scope/name", name)
	}

	switch constraint {
	case "", "latest", "next":
	default:
		if _, err := semver.NewConstraint(constraint); err != nil {
			return PackageSpec{}, fmt.Errorf("package %q: invalid version constraint %q: %w", name, constraint, err)
		}
	}

	return PackageSpec{name: name, constraint: constraint}, nil
}

// MustParsePackageSpec parses a spec or panics (for tests only)
func MustParsePackageSpec(raw string) PackageSpec {
	spec, err := ParsePackageSpec(raw)
	if err != nil {
		panic(err)
	}
	return spec
}

// Name returns the package name; it is the deduplication key.
func (p PackageSpec) Name() string {
	return p.name
}

// Constraint returns the version constraint, or "" when unpinned.
func (p PackageSpec) Constraint() string {
	return p.constraint
}

// String returns the spec in package-manager form.
func (p PackageSpec) String() string {
	if p.constraint == "" {
		return p.name
	}
	return p.name + "@" + p.constraint
}

// MarshalText implements encoding.TextMarshaler
func (p PackageSpec) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *PackageSpec) UnmarshalText(data []byte) error {
	spec, err := ParsePackageSpec(string(data))
	if err != nil {
		return err
	}
	*p = spec
	return nil
}
