package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"golang.org/x/sync/errgroup"
)

// DefaultUnitPattern matches unit files in the units directory.
const DefaultUnitPattern = "*.sh"

// UnitLoader discovers unit files in one directory and parses their headers.
//
// Discovery is non-recursive and ordered by file name, which is the order
// the scheduler preserves within a phase. Files are parsed concurrently
// but results keep discovery order.
type UnitLoader struct {
	logger      *slog.Logger
	pattern     string
	concurrency int
}

// NewUnitLoader creates a loader for files matching pattern.
func NewUnitLoader(pattern string, logger *slog.Logger) *UnitLoader {
	if pattern == "" {
		pattern = DefaultUnitPattern
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitLoader{
		logger:      logger,
		pattern:     pattern,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// LoadDir loads every unit in dir. Any malformed header or duplicate ID
// fails the whole load.
func (l *UnitLoader) LoadDir(ctx context.Context, dir string) ([]*entities.UnitDescriptor, error) {
	if _, err := filepath.Match(l.pattern, ""); err != nil {
		return nil, apperrors.NewConfigurationError("unit_pattern", fmt.Sprintf("invalid pattern %q", l.pattern), err)
	}

	// Security: Use os.OpenRoot so unit names cannot escape the directory
	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewConfigurationError("units_dir", fmt.Sprintf("units directory %s does not exist", dir), err)
		}
		return nil, fmt.Errorf("failed to open units directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	names, err := l.discover(dir)
	if err != nil {
		return nil, err
	}

	descs := make([]*entities.UnitDescriptor, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			descs[i], errs[i] = l.parseFile(root, dir, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Report the first failure in discovery order so output is stable.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	units := make([]*entities.UnitDescriptor, 0, len(descs))
	seen := make(map[string]string, len(descs))
	for i, d := range descs {
		if d == nil {
			l.logger.Debug("skipping file without unit header", "file", filepath.Join(dir, names[i]))
			continue
		}
		id := d.ID().String()
		if first, dup := seen[id]; dup {
			return nil, apperrors.NewDuplicateUnitIdentityError(id, first, d.Source())
		}
		seen[id] = d.Source()
		units = append(units, d)
	}

	l.logger.Debug("units discovered", "dir", dir, "files", len(names), "units", len(units))
	return units, nil
}

// discover returns matching regular file names, sorted.
func (l *UnitLoader) discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read units directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(l.pattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	// os.ReadDir already sorts by file name
	return names, nil
}

func (l *UnitLoader) parseFile(root *os.Root, dir, name string) (*entities.UnitDescriptor, error) {
	file, err := root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit %s: %w", name, err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %s: %w", name, err)
	}
	return ParseUnit(filepath.Join(dir, name), data)
}
