package entities

import "slices"

// InstalledPackageSet is the run-local record of package names already
// submitted to the installer. It only grows, and is discarded at exit; the
// package manager itself is the durable truth.
type InstalledPackageSet struct {
	names map[string]bool
	order []string
}

// NewInstalledPackageSet returns an empty set.
func NewInstalledPackageSet() *InstalledPackageSet {
	return &InstalledPackageSet{names: make(map[string]bool)}
}

// Contains reports whether the package was already submitted.
func (s *InstalledPackageSet) Contains(name string) bool {
	return s.names[name]
}

// Add records package names; duplicates are ignored.
func (s *InstalledPackageSet) Add(names ...string) {
	for _, n := range names {
		if s.names[n] {
			continue
		}
		s.names[n] = true
		s.order = append(s.order, n)
	}
}

// Len returns the number of recorded packages.
func (s *InstalledPackageSet) Len() int {
	return len(s.order)
}

// Names returns the recorded names in submission order.
func (s *InstalledPackageSet) Names() []string {
	return slices.Clone(s.order)
}
