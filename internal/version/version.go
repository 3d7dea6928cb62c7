// Package version reports which omniforge build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
)

// Set with -ldflags "-X github.com/omniforge-dev/omniforge/internal/version.Version=...".
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildDate = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	Release   bool   `json:"release" yaml:"release"`
}

// Get returns the build information. Commit and date fall back to the VCS
// stamp the Go toolchain embeds when they were not set at link time.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fillFromVCS(bi.Settings)
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	info.Release = info.IsRelease()
	return info
}

func (i *Info) fillFromVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = s.Value
				if len(i.Commit) > 12 {
					i.Commit = i.Commit[:12]
				}
			}
		case "vcs.time":
			if i.BuildDate == "" {
				i.BuildDate = s.Value
			}
		}
	}
}

func (i Info) String() string {
	return i.Version
}

// Full is the one-line form printed by `omniforge version`.
func (i Info) Full() string {
	s := fmt.Sprintf("%s (%s) built %s %s %s", i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
	if !i.IsRelease() {
		s += " [development build]"
	}
	return s
}

// IsRelease reports whether Version is a semver release without a
// prerelease suffix.
func (i Info) IsRelease() bool {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}
