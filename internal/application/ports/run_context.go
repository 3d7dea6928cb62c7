package ports

import (
	"log/slog"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// RunContext is everything a unit body may use. It replaces ambient shared
// helpers: units get their collaborators here and nowhere else.
type RunContext struct {
	RunID       values.RunID
	Unit        *entities.UnitDescriptor
	Flags       *entities.RunFlags
	Settings    map[string]values.Setting // resolved declared settings
	Resolver    SettingsResolver
	Installer   PackageInstaller
	Logger      *slog.Logger
	ProjectRoot string
}

// Setting returns a resolved value, falling back to the resolver for keys
// the unit did not declare.
func (rc *RunContext) Setting(key string) (string, bool) {
	if s, ok := rc.Settings[key]; ok {
		return s.Value, true
	}
	if rc.Resolver == nil {
		return "", false
	}
	s, ok := rc.Resolver.Resolve(key)
	return s.Value, ok
}
