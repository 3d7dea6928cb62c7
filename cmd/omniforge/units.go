package main

import (
	"github.com/omniforge-dev/omniforge/internal/application/dto"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/spf13/cobra"
)

func newUnitsCmd() *cobra.Command {
	var (
		containerOpts containerOptions
		outputOpts    OutputOptions
		selection     SelectionOptions
	)

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List the loaded units in schedule order",
		Args:  cobra.NoArgs,
		RunE: withContainer(&containerOpts, func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if err := outputOpts.Validate(); err != nil {
				return err
			}
			resp, err := cc.Container.Orchestrator().ListUnits(cc.Context, dto.ListUnitsRequest{
				Selection: selection.DTO(),
			})
			if err != nil {
				return err
			}
			return outputOpts.WriteUnits(cmd.OutOrStdout(), resp.Units)
		}),
	}

	addContainerFlags(cmd, &containerOpts)
	outputOpts.RegisterFlags(cmd, ports.ReportUnits)
	selection.RegisterFlags(cmd)
	return cmd
}
