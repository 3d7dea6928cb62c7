// Package settings resolves named settings from layered sources: per-run
// overrides, project env files and defaults.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/subosito/gotenv"
)

// BuiltinDefaults returns the compiled-in defaults for a project.
func BuiltinDefaults(projectRoot string) map[string]string {
	return map[string]string{
		"PROJECT_ROOT":        projectRoot,
		"INSTALL_DIR":         projectRoot,
		"REDIS_PORT":          "6379",
		"DOCKER_COMPOSE_FILE": "docker-compose.yml",
	}
}

// Resolver implements ports.SettingsResolver.
// It checks sources in order: overrides -> env files -> defaults, and
// caches hits for its own lifetime. Build a new Resolver per run.
type Resolver struct {
	overrides map[string]string
	envFile   map[string]string
	defaults  map[string]string
	cache     map[string]values.Setting
	mu        sync.RWMutex
}

// NewResolver creates a resolver over already-loaded layers.
func NewResolver(overrides, envFile, defaults map[string]string) *Resolver {
	return &Resolver{
		overrides: maps.Clone(overrides),
		envFile:   maps.Clone(envFile),
		defaults:  maps.Clone(defaults),
		cache:     make(map[string]values.Setting),
	}
}

// Resolve returns the setting by key and whether any layer defines it.
// An empty value is a value: "KEY=" in an env file resolves to "".
func (r *Resolver) Resolve(key string) (values.Setting, bool) {
	r.mu.RLock()
	if s, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return s, true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after write lock
	if s, ok := r.cache[key]; ok {
		return s, true
	}

	s, ok := r.resolveFromSources(key)
	if ok {
		r.cache[key] = s
	}
	return s, ok
}

func (r *Resolver) resolveFromSources(key string) (values.Setting, bool) {
	// 1. Explicit per-run override
	if v, ok := r.overrides[key]; ok {
		return values.Setting{Key: key, Value: v, Source: values.SettingSourceOverride}, true
	}

	// 2. Project env files
	if v, ok := r.envFile[key]; ok {
		return values.Setting{Key: key, Value: v, Source: values.SettingSourceEnvFile}, true
	}

	// 3. Project and compiled-in defaults
	if v, ok := r.defaults[key]; ok {
		return values.Setting{Key: key, Value: v, Source: values.SettingSourceDefault}, true
	}

	return values.Setting{}, false
}

// Provider implements ports.SettingsProvider. Every NewResolver call re-reads
// the env files, so nothing leaks from one run into the next.
type Provider struct {
	overrides   map[string]string
	defaults    map[string]string
	projectRoot string
	envFiles    []string
}

// NewProvider creates a provider. envFiles are relative to projectRoot
// unless absolute; later files win over earlier ones. Project defaults win
// over the compiled-in ones.
func NewProvider(projectRoot string, envFiles []string, overrides, projectDefaults map[string]string) *Provider {
	defaults := BuiltinDefaults(projectRoot)
	maps.Copy(defaults, projectDefaults)

	return &Provider{
		overrides:   maps.Clone(overrides),
		defaults:    defaults,
		projectRoot: projectRoot,
		envFiles:    envFiles,
	}
}

// NewResolver loads the env files and returns a fresh resolver.
func (p *Provider) NewResolver(_ context.Context) (ports.SettingsResolver, error) {
	envFile, err := ReadEnvFiles(p.projectRoot, p.envFiles)
	if err != nil {
		return nil, err
	}
	return NewResolver(p.overrides, envFile, p.defaults), nil
}

// ReadEnvFiles parses the env files in order and merges them, later files
// winning. Missing files are treated as empty. Files are only read.
func ReadEnvFiles(projectRoot string, files []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}

		env, err := readEnvFile(path)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, env)
	}
	return merged, nil
}

func readEnvFile(path string) (gotenv.Env, error) {
	//nolint:gosec // G304: env file paths come from the project config
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	env, err := gotenv.StrictParse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", path, err)
	}
	return env, nil
}

// ParseOverrides parses KEY=VALUE pairs from --set flags.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q (expected KEY=VALUE)", pair)
		}
		out[key] = value
	}
	return out, nil
}

// MergeOverrides layers flag overrides over config overrides. Config keys
// are upper-cased, since viper lower-cases map keys.
func MergeOverrides(fromConfig, fromFlags map[string]string) map[string]string {
	out := make(map[string]string, len(fromConfig)+len(fromFlags))
	for k, v := range fromConfig {
		out[strings.ToUpper(k)] = v
	}
	maps.Copy(out, fromFlags)
	return out
}
