package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omniforge-dev/omniforge/internal/infrastructure/container"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/logging"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
// Eliminates repetitive container initialization across CLI commands.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// containerOptions are the per-command inputs to the container.
type containerOptions struct {
	UnitsDir string
	Ledger   string
	Sets     []string
}

// withContainer wraps a command handler with container initialization.
// opts is read when the command runs, after flags are parsed.
func withContainer(opts *containerOptions, handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc, err := newCommandContext(cmd, opts)
		if err != nil {
			return err
		}
		return handler(cc, cmd, args)
	}
}

func newCommandContext(cmd *cobra.Command, opts *containerOptions) (*CommandContext, error) {
	if opts == nil {
		opts = &containerOptions{}
	}
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	fromFlags, err := settings.ParseOverrides(opts.Sets)
	if err != nil {
		return nil, err
	}
	overrides := settings.MergeOverrides(viper.GetStringMapString("overrides"), fromFlags)

	ledger := opts.Ledger
	if ledger == "" {
		ledger = viper.GetString("ledger")
	}

	// Initialize container with dependencies
	c, err := container.New(container.Options{
		Logger:        logger,
		ProjectRoot:   viper.GetString("project"),
		UnitsDir:      opts.UnitsDir,
		LedgerBackend: ledger,
		Overrides:     overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	c.Logger().Debug("project loaded",
		"root", c.ProjectRoot(),
		"units_dir", c.UnitsDir(),
		"ledger", c.LedgerPath(),
		"package_manager", c.PackageManager().Name(),
	)

	return &CommandContext{
		Container: c,
		Logger:    c.Logger(),
		Context:   ctx,
	}, nil
}

// addContainerFlags adds the flags every container-backed command accepts.
func addContainerFlags(cmd *cobra.Command, opts *containerOptions) {
	cmd.Flags().StringVar(&opts.UnitsDir, "units-dir", "", "Directory containing unit scripts (overrides units_dir)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "Ledger backend: file, memory (default: file)")
}
