package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/spf13/cobra"
)

// errNotConfirmed is returned when reset needs confirmation it cannot get.
var errNotConfirmed = errors.New("refusing to reset the ledger without confirmation (use --yes)")

// confirmFunc asks the user a yes/no question. Replaced in tests.
var confirmFunc = func(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Reset").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	return confirmed, err
}

// isInteractive reports whether stdin is a terminal.
var isInteractive = func() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or reset the record of succeeded units",
	}
	cmd.AddCommand(newLedgerListCmd(), newLedgerResetCmd())
	return cmd
}

func newLedgerListCmd() *cobra.Command {
	var (
		containerOpts containerOptions
		outputOpts    OutputOptions
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recorded unit successes",
		Args:  cobra.NoArgs,
		RunE: withContainer(&containerOpts, func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := outputOpts.Validate(); err != nil {
				return err
			}
			entries, err := cc.Container.Ledger().Entries(cc.Context)
			if err != nil {
				return err
			}
			return outputOpts.WriteLedger(cmd.OutOrStdout(), entries)
		}),
	}
	addContainerFlags(cmd, &containerOpts)
	outputOpts.RegisterFlags(cmd, ports.ReportLedger)
	return cmd
}

func newLedgerResetCmd() *cobra.Command {
	var (
		containerOpts containerOptions
		yes           bool
	)
	cmd := &cobra.Command{
		Use:   "reset [unit-id...]",
		Short: "Forget recorded successes so units run again",
		Long: `Remove ledger entries for the given units, or every entry when no unit
is named. Asks for confirmation unless --yes is given.`,
		RunE: withContainer(&containerOpts, func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			target := "all recorded units"
			if len(args) > 0 {
				target = strings.Join(args, ", ")
			}

			if !yes {
				if !isInteractive() {
					return errNotConfirmed
				}
				ok, err := confirmFunc(fmt.Sprintf("Reset ledger entries for %s?", target))
				if err != nil {
					return err
				}
				if !ok {
					cc.Logger.Info("ledger reset cancelled")
					return nil
				}
			}

			removed, err := cc.Container.Ledger().Reset(cc.Context, args...)
			if err != nil {
				return err
			}
			for _, id := range args {
				if !slices.Contains(removed, id) {
					cc.Logger.Warn("unit not in ledger", "unit", id)
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d ledger entries\n", len(removed))
			return err
		}),
	}
	addContainerFlags(cmd, &containerOpts)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
