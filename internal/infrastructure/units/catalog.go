package units

import (
	"context"
	"io"
	"log/slog"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/config"
)

// Ensure interface compliance
var _ ports.UnitLoader = (*Catalog)(nil)

// Catalog loads the unit scripts of one directory and pairs each
// descriptor with a ScriptAction.
type Catalog struct {
	loader *config.UnitLoader
	dir    string
	shell  string
	stdout io.Writer
	stderr io.Writer
}

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	Dir     string
	Pattern string
	Shell   string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// NewCatalog creates a catalog over opts.Dir.
func NewCatalog(opts CatalogOptions) *Catalog {
	return &Catalog{
		loader: config.NewUnitLoader(opts.Pattern, opts.Logger),
		dir:    opts.Dir,
		shell:  opts.Shell,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
}

// Dir returns the directory the catalog scans.
func (c *Catalog) Dir() string {
	return c.dir
}

// LoadUnits parses every unit file and attaches its script body.
func (c *Catalog) LoadUnits(ctx context.Context) ([]ports.Unit, error) {
	descriptors, err := c.loader.LoadDir(ctx, c.dir)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Unit, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, ports.Unit{
			Descriptor: d,
			Action: &ScriptAction{
				Shell:  c.shell,
				Path:   d.Source(),
				Stdout: c.stdout,
				Stderr: c.stderr,
			},
		})
	}
	return out, nil
}
