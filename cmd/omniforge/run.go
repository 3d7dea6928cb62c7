package main

import (
	"fmt"
	"strings"

	"github.com/omniforge-dev/omniforge/internal/application/dto"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/flags"
	"github.com/omniforge-dev/omniforge/internal/version"
	"github.com/spf13/cobra"
)

const runLong = `Load every unit, order them by phase and run each one that has not
already succeeded. The run stops at the first failing unit; units that
succeeded before it stay recorded in the ledger.

Flags the orchestrator does not know are passed to units as
OMNIFORGE_FLAG_<NAME> environment variables. Give them values with "=":
  --region=eu-west-1   value "eu-west-1"
  --with-seed          value "1"

Selection:
  --only a,b                          Run only these units
  --exclude a,b                       Skip these units
  --profile core                      Run units with any of these profiles
  --exclude-profile slow              Skip units with any of these profiles
  --filter "phase <= 2"               Advanced filter expression
Forcing:
  --force                             Rerun every unit
  --force=redis-setup,cache-layer     Rerun only these units`

// runCommand holds the flag bindings of one run (or plan) command.
type runCommand struct {
	registry  *flags.Registry
	container containerOptions
	output    OutputOptions
	selection SelectionOptions
	dryRun    bool
}

func newRunCmd() *cobra.Command {
	return newScheduleCmd(&cobra.Command{
		Use:   "run [flags]",
		Short: "Run the units that have not yet succeeded",
		Long:  runLong,
	}, false)
}

func newPlanCmd() *cobra.Command {
	return newScheduleCmd(&cobra.Command{
		Use:   "plan [flags]",
		Short: "Preview the schedule without running anything (run --dry-run)",
		Long: `Show what "run" would do: every scheduled unit in order, which ones
would be skipped as already succeeded, and which declared settings are
missing. Nothing is executed, installed or recorded.`,
	}, true)
}

func newScheduleCmd(cmd *cobra.Command, dryRun bool) *cobra.Command {
	rc := &runCommand{dryRun: dryRun}

	// Unknown flags are unit flags, so tokenizing is done by the registry.
	cmd.DisableFlagParsing = true
	cmd.RunE = rc.execute

	rc.registry = flags.NewRegistry(cmd.Flags())
	addContainerFlags(cmd, &rc.container)
	cmd.Flags().StringArrayVar(&rc.container.Sets, "set", nil, "Override a setting for this run (KEY=VALUE, repeatable)")
	rc.output.RegisterFlags(cmd, ports.ReportRun)
	rc.selection.RegisterFlags(cmd)
	return cmd
}

func (rc *runCommand) execute(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	fs.AddFlagSet(cmd.InheritedFlags())

	if rc.dryRun {
		args = append([]string{"--dry-run"}, args...)
	}
	runFlags, positional, err := rc.registry.Parse(fs, args)
	if err != nil {
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		return cmd.Help()
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(positional, " "))
	}

	// Global flags were only parsed now.
	if err := prepare(cmd); err != nil {
		return err
	}
	if err := rc.output.Validate(); err != nil {
		return err
	}

	cc, err := newCommandContext(cmd, &rc.container)
	if err != nil {
		return err
	}

	resp, runErr := cc.Container.Orchestrator().Run(cc.Context, dto.RunRequest{
		Flags:     runFlags,
		Selection: rc.selection.DTO(),
		Metadata:  dto.RequestMetadata{Version: version.Get().Version},
	})
	if resp == nil {
		return runErr
	}

	for _, w := range resp.Diagnostics.Warnings {
		cc.Logger.Warn(w)
	}
	for id, reason := range resp.Diagnostics.Excluded {
		cc.Logger.Debug("unit not selected", "unit", id, "reason", reason)
	}

	err = rc.output.WriteRun(cmd.OutOrStdout(), resp.Result)
	if runErr != nil {
		if err != nil {
			cc.Logger.Error("failed to write report", "error", err)
		}
		return runErr
	}
	return err
}
