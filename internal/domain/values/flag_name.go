package values

import (
	"fmt"
	"strings"
	"unicode"
)

// FlagName names a CLI flag without its leading dashes.
type FlagName string

// Flags interpreted by the orchestrator core. Everything else is an opaque
// boolean (or valued) flag passed through to units.
const (
	// FlagDryRun previews the schedule; no unit body runs and nothing mutates
	FlagDryRun FlagName = "dry-run"
	// FlagSkipInstall records packages as installed without installing them
	FlagSkipInstall FlagName = "skip-install"
	// FlagDevOnly installs only development packages
	FlagDevOnly FlagName = "dev-only"
	// FlagNoDev skips development packages
	FlagNoDev FlagName = "no-dev"
	// FlagForce bypasses the ledger skip for all or targeted units
	FlagForce FlagName = "force"
	// FlagNoVerify asks units to skip their post-condition checks
	FlagNoVerify FlagName = "no-verify"
)

// CoreFlags returns the flags the orchestrator itself knows about.
func CoreFlags() []FlagName {
	return []FlagName{FlagDryRun, FlagSkipInstall, FlagDevOnly, FlagNoDev, FlagForce, FlagNoVerify}
}

// NewFlagName strips leading dashes so "--no-verify" and "no-verify" are
// the same flag. Any other spelling is kept as typed; only an empty name or
// one containing whitespace or '=' is rejected.
func NewFlagName(name string) (FlagName, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "-")
	if name == "" {
		return "", fmt.Errorf("flag name cannot be empty")
	}
	if strings.ContainsFunc(name, func(r rune) bool { return unicode.IsSpace(r) || r == '=' }) {
		return "", fmt.Errorf("invalid flag name %q", name)
	}
	return FlagName(name), nil
}

// IsCore reports whether the orchestrator interprets this flag itself.
func (f FlagName) IsCore() bool {
	for _, core := range CoreFlags() {
		if f == core {
			return true
		}
	}
	return false
}

// EnvName returns the environment variable a unit body sees for this flag:
// upper-cased, with every character outside [A-Z0-9] mapped to '_'.
func (f FlagName) EnvName() string {
	mapped := strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, string(f))
	return "OMNIFORGE_FLAG_" + mapped
}

// String returns the flag name as typed on the command line.
func (f FlagName) String() string {
	return "--" + string(f)
}
