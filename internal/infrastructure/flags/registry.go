// Package flags turns a run's argv into entities.RunFlags.
//
// Flags defined on the command are parsed by pflag. Any other flag token is
// kept as a generic flag so units can define their own switches without the
// orchestrator knowing about them.
package flags

import (
	"fmt"
	"strings"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/spf13/pflag"
)

// forceAll is the NoOptDefVal of --force: a bare --force means every unit.
const forceAll = "*"

// Registry binds the core run flags to a flag set.
type Registry struct {
	dryRun      bool
	skipInstall bool
	devOnly     bool
	noDev       bool
	noVerify    bool
	force       []string
}

// NewRegistry registers the core flags on fs.
func NewRegistry(fs *pflag.FlagSet) *Registry {
	r := &Registry{}
	fs.BoolVar(&r.dryRun, string(values.FlagDryRun), false, "Preview the schedule without running, installing or recording anything")
	fs.BoolVar(&r.skipInstall, string(values.FlagSkipInstall), false, "Record declared packages as installed without installing them")
	fs.BoolVar(&r.devOnly, string(values.FlagDevOnly), false, "Install only development packages")
	fs.BoolVar(&r.noDev, string(values.FlagNoDev), false, "Skip development packages")
	fs.BoolVar(&r.noVerify, string(values.FlagNoVerify), false, "Ask units to skip their verification steps")
	fs.StringSliceVar(&r.force, string(values.FlagForce), nil, "Rerun units even if recorded as succeeded (bare: all units; --force=a,b: those units)")
	fs.Lookup(string(values.FlagForce)).NoOptDefVal = forceAll
	return r
}

// Parse splits args into flags known to fs and generic ones, parses the
// known ones and returns the combined RunFlags with the positional args.
func (r *Registry) Parse(fs *pflag.FlagSet, args []string) (*entities.RunFlags, []string, error) {
	known, extras, err := Split(fs, args)
	if err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(known); err != nil {
		return nil, nil, err
	}
	return r.build(extras), fs.Args(), nil
}

// Generic is a flag not defined on the command.
type Generic struct {
	Name  string
	Value string
}

// Split separates tokens for fs from generic flags. Generic flags take a
// value only through "=": "--region=eu" has a value, "--region eu" is a
// boolean flag followed by a positional argument. Everything after "--" is
// positional.
func Split(fs *pflag.FlagSet, args []string) ([]string, []Generic, error) {
	var known []string
	var extras []Generic

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			known = append(known, args[i:]...)
			return known, extras, nil

		case strings.HasPrefix(arg, "--"):
			name, value, hasValue := strings.Cut(arg[2:], "=")
			if f := fs.Lookup(name); f != nil {
				known = append(known, arg)
				if !hasValue && needsValue(f) && i+1 < len(args) {
					i++
					known = append(known, args[i])
				}
				continue
			}
			g, err := generic(name, value)
			if err != nil {
				return nil, nil, err
			}
			extras = append(extras, g)

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			short := arg[1:2]
			if f := fs.ShorthandLookup(short); f != nil {
				known = append(known, arg)
				if len(arg) == 2 && needsValue(f) && i+1 < len(args) {
					i++
					known = append(known, args[i])
				}
				continue
			}
			name, value, _ := strings.Cut(arg[1:], "=")
			g, err := generic(name, value)
			if err != nil {
				return nil, nil, err
			}
			extras = append(extras, g)

		default:
			known = append(known, arg)
		}
	}
	return known, extras, nil
}

func needsValue(f *pflag.Flag) bool {
	return f.NoOptDefVal == "" && f.Value.Type() != "bool"
}

func generic(name, value string) (Generic, error) {
	flag, err := values.NewFlagName(name)
	if err != nil {
		return Generic{}, fmt.Errorf("invalid flag %q: %w", name, err)
	}
	return Generic{Name: string(flag), Value: value}, nil
}

func (r *Registry) build(extras []Generic) *entities.RunFlags {
	b := entities.NewRunFlagsBuilder().
		Toggle(values.FlagDryRun, r.dryRun).
		Toggle(values.FlagSkipInstall, r.skipInstall).
		Toggle(values.FlagDevOnly, r.devOnly).
		Toggle(values.FlagNoDev, r.noDev).
		Toggle(values.FlagNoVerify, r.noVerify)

	for _, target := range r.force {
		if target == forceAll {
			b.ForceAll()
			continue
		}
		b.Force(strings.TrimSpace(target))
	}
	for _, g := range extras {
		b.Extra(g.Name, g.Value)
	}
	return b.Build()
}
