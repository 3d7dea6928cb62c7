// Package system provides infrastructure for project-level configuration.
// This includes loading the project config file (omniforge.yaml) that sits
// next to the units it drives.
package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// ProjectConfigFile is the config file name looked up in the project root.
const ProjectConfigFile = "omniforge.yaml"

// Defaults used when the project config leaves a field empty.
const (
	DefaultUnitsDir       = "scripts/omniforge"
	DefaultUnitPattern    = "*.sh"
	DefaultShell          = "bash"
	DefaultLedgerPath     = ".omniforge/ledger.yaml"
	DefaultPackageManager = "npm"
	DefaultLockTimeout    = 10 * time.Second
)

// SupportedPackageManagers lists the package_manager values we can drive.
var SupportedPackageManagers = []string{"npm", "pnpm", "yarn", "bun"}

// Config represents the project configuration file (omniforge.yaml).
// Every field is optional; relative paths are relative to the project root.
type Config struct {
	Defaults       map[string]string `yaml:"defaults"`
	UnitsDir       string            `yaml:"units_dir"`
	UnitPattern    string            `yaml:"unit_pattern"`
	Shell          string            `yaml:"shell"`
	LedgerPath     string            `yaml:"ledger_path"`
	PackageManager string            `yaml:"package_manager"`
	LockTimeout    string            `yaml:"lock_timeout"`
	EnvFiles       []string          `yaml:"env_files"`
}

// DefaultEnvFiles returns the env files consulted when none are configured.
// Later files win over earlier ones.
func DefaultEnvFiles() []string {
	return []string{".env", ".env.local"}
}

// ConfigLoader loads project configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new project config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no project config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Defaults == nil {
		c.Defaults = make(map[string]string)
	}
	if c.UnitsDir == "" {
		c.UnitsDir = DefaultUnitsDir
	}
	if c.UnitPattern == "" {
		c.UnitPattern = DefaultUnitPattern
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if c.LedgerPath == "" {
		c.LedgerPath = DefaultLedgerPath
	}
	if c.PackageManager == "" {
		c.PackageManager = DefaultPackageManager
	}
	if c.LockTimeout == "" {
		c.LockTimeout = DefaultLockTimeout.String()
	}
	if c.EnvFiles == nil {
		c.EnvFiles = DefaultEnvFiles()
	}
}

// Validate checks field values after defaults are applied.
func (c *Config) Validate() error {
	if !slices.Contains(SupportedPackageManagers, c.PackageManager) {
		return fmt.Errorf("package_manager %q is not supported (supported: %v)", c.PackageManager, SupportedPackageManagers)
	}
	if _, err := filepath.Match(c.UnitPattern, ""); err != nil {
		return fmt.Errorf("unit_pattern %q: %w", c.UnitPattern, err)
	}
	if _, err := c.LockTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// LockTimeoutDuration parses lock_timeout.
func (c *Config) LockTimeoutDuration() (time.Duration, error) {
	return parseDuration("lock_timeout", c.LockTimeout)
}

// ResolvePath makes a configured path absolute relative to the project root.
func ResolvePath(projectRoot, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(projectRoot, p)
}

// Load loads the project configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// This allows omniforge to work out-of-the-box without configuration.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	//nolint:gosec // G304: path is the user's project config file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", path, err)
	}
	return &config, nil
}

// LoadProject loads omniforge.yaml from the project root.
func (l *ConfigLoader) LoadProject(projectRoot string) (*Config, error) {
	return l.Load(filepath.Join(projectRoot, ProjectConfigFile))
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
