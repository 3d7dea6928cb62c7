package entities

import (
	"slices"

	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// forceAll is the force target meaning "every unit".
const forceAll = "*"

// RunFlags is the flag set of one orchestrator invocation. It is built once
// from argv and shared read-only with every unit execution.
type RunFlags struct {
	toggles      map[values.FlagName]bool
	forceTargets map[string]bool
	extra        map[string]string
}

// RunFlagsBuilder accumulates flags while argv is being tokenized.
type RunFlagsBuilder struct {
	flags RunFlags
}

// NewRunFlagsBuilder returns a builder with nothing set.
func NewRunFlagsBuilder() *RunFlagsBuilder {
	return &RunFlagsBuilder{flags: RunFlags{
		toggles:      make(map[values.FlagName]bool),
		forceTargets: make(map[string]bool),
		extra:        make(map[string]string),
	}}
}

// Toggle sets a core boolean flag.
func (b *RunFlagsBuilder) Toggle(name values.FlagName, on bool) *RunFlagsBuilder {
	if on {
		b.flags.toggles[name] = true
	} else {
		delete(b.flags.toggles, name)
	}
	return b
}

// ForceAll forces every unit to rerun.
func (b *RunFlagsBuilder) ForceAll() *RunFlagsBuilder {
	b.flags.forceTargets[forceAll] = true
	return b
}

// Force forces the given unit IDs to rerun.
func (b *RunFlagsBuilder) Force(ids ...string) *RunFlagsBuilder {
	for _, id := range ids {
		if id == "" {
			continue
		}
		b.flags.forceTargets[id] = true
	}
	return b
}

// Extra records a flag the core does not interpret. Boolean flags carry "".
func (b *RunFlagsBuilder) Extra(name, value string) *RunFlagsBuilder {
	b.flags.extra[name] = value
	return b
}

// Build freezes the flags. The builder must not be used afterwards.
func (b *RunFlagsBuilder) Build() *RunFlags {
	f := b.flags
	if len(f.forceTargets) > 0 {
		f.toggles[values.FlagForce] = true
	}
	return &f
}

// NoFlags returns an empty flag set.
func NoFlags() *RunFlags {
	return NewRunFlagsBuilder().Build()
}

// DryRun reports --dry-run.
func (f *RunFlags) DryRun() bool { return f.toggles[values.FlagDryRun] }

// SkipInstall reports --skip-install.
func (f *RunFlags) SkipInstall() bool { return f.toggles[values.FlagSkipInstall] }

// DevOnly reports --dev-only.
func (f *RunFlags) DevOnly() bool { return f.toggles[values.FlagDevOnly] }

// NoDev reports --no-dev.
func (f *RunFlags) NoDev() bool { return f.toggles[values.FlagNoDev] }

// NoVerify reports --no-verify.
func (f *RunFlags) NoVerify() bool { return f.toggles[values.FlagNoVerify] }

// IsSet reports whether a flag, core or generic, was given. Leading dashes
// in name are ignored.
func (f *RunFlags) IsSet(name string) bool {
	flag, err := values.NewFlagName(name)
	if err != nil {
		return false
	}
	if f.toggles[flag] {
		return true
	}
	_, ok := f.extra[string(flag)]
	return ok
}

// Value returns the value of a generic flag given as --name=value.
func (f *RunFlags) Value(name string) (string, bool) {
	flag, err := values.NewFlagName(name)
	if err != nil {
		return "", false
	}
	v, ok := f.extra[string(flag)]
	return v, ok
}

// ForceApplies reports whether the ledger skip is bypassed for the unit.
func (f *RunFlags) ForceApplies(id values.UnitID) bool {
	return f.forceTargets[forceAll] || f.forceTargets[id.String()]
}

// ForcesAll reports whether --force was given without targets.
func (f *RunFlags) ForcesAll() bool {
	return f.forceTargets[forceAll]
}

// ForceTargets returns the explicitly targeted unit IDs, sorted.
func (f *RunFlags) ForceTargets() []string {
	var ids []string
	for id := range f.forceTargets {
		if id != forceAll {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Set returns every set flag name with its value ("" for booleans), for
// handing to unit bodies.
func (f *RunFlags) Set() map[values.FlagName]string {
	out := make(map[values.FlagName]string, len(f.toggles)+len(f.extra))
	for name := range f.toggles {
		out[name] = ""
	}
	for name, v := range f.extra {
		out[values.FlagName(name)] = v
	}
	return out
}

// Names returns every set flag name, sorted.
func (f *RunFlags) Names() []string {
	set := f.Set()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}
