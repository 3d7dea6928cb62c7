package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/omniforge-dev/omniforge/internal/application/dto"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// OutputOptions controls where and how reports are written.
type OutputOptions struct {
	Format  string
	OutFile string

	report ports.Report
}

// RegisterFlags adds output flags for one report kind to a cobra command.
func (opts *OutputOptions) RegisterFlags(cmd *cobra.Command, report ports.Report) {
	opts.report = report
	formats := strings.Join(output.NewFormatterFactory().SupportedFormats(report), ", ")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: "+formats+" (default: table)")
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "", "Output file path (default: stdout)")
}

func (opts *OutputOptions) format() string {
	if opts.Format != "" {
		return opts.Format
	}
	if f := viper.GetString("format"); f != "" {
		return f
	}
	return output.FormatTable
}

// Validate checks the format before any work happens.
func (opts *OutputOptions) Validate() error {
	format := opts.format()
	supported := output.NewFormatterFactory().SupportedFormats(opts.report)
	if slices.Contains(supported, format) {
		return nil
	}
	return fmt.Errorf("invalid format: %s (valid: %v)", format, supported)
}

// WriteRun renders a run or plan result.
func (opts *OutputOptions) WriteRun(stdout io.Writer, result *execution.RunResult) error {
	return opts.write(stdout, func(f *output.FormatterFactory, w io.Writer, o ports.FormatterOptions) error {
		formatter, err := f.RunFormatter(opts.format(), w, o)
		if err != nil {
			return err
		}
		return formatter.Format(result)
	})
}

// WriteUnits renders the unit list.
func (opts *OutputOptions) WriteUnits(stdout io.Writer, units []*entities.UnitDescriptor) error {
	return opts.write(stdout, func(f *output.FormatterFactory, w io.Writer, o ports.FormatterOptions) error {
		formatter, err := f.UnitListFormatter(opts.format(), w, o)
		if err != nil {
			return err
		}
		return formatter.FormatUnits(units)
	})
}

// WriteLedger renders ledger entries.
func (opts *OutputOptions) WriteLedger(stdout io.Writer, entries []entities.LedgerEntry) error {
	return opts.write(stdout, func(f *output.FormatterFactory, w io.Writer, o ports.FormatterOptions) error {
		formatter, err := f.LedgerFormatter(opts.format(), w, o)
		if err != nil {
			return err
		}
		return formatter.FormatLedger(entries)
	})
}

// write renders on stdout or the output file.
func (opts *OutputOptions) write(
	stdout io.Writer,
	render func(*output.FormatterFactory, io.Writer, ports.FormatterOptions) error,
) error {
	writer := stdout
	toFile := opts.OutFile != ""
	if toFile {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(opts.OutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		slog.Info("writing output", "file", opts.OutFile, "format", opts.format())
	}

	options := ports.FormatterOptions{
		Indent:  true,
		NoColor: toFile || viper.GetBool("no-color"),
	}
	if err := render(output.NewFormatterFactory(), writer, options); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// SelectionOptions holds the unit selection flags.
type SelectionOptions struct {
	Only            []string
	Exclude         []string
	Profiles        []string
	ExcludeProfiles []string
	Filter          string
}

// RegisterFlags adds selection flags to a cobra command.
func (opts *SelectionOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "Run only these units (comma-separated IDs)")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Skip these units (comma-separated IDs)")
	cmd.Flags().StringSliceVar(&opts.Profiles, "profile", nil, "Run units carrying any of these profiles")
	cmd.Flags().StringSliceVar(&opts.ExcludeProfiles, "exclude-profile", nil, "Skip units carrying any of these profiles")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Filter expression (e.g. \"phase <= 2 && 'core' in profiles\")")
}

// DTO converts the flags into the application request type.
func (opts *SelectionOptions) DTO() dto.SelectionOptions {
	return dto.SelectionOptions{
		FilterExpression: opts.Filter,
		OnlyUnits:        opts.Only,
		ExcludeUnits:     opts.Exclude,
		Profiles:         opts.Profiles,
		ExcludeProfiles:  opts.ExcludeProfiles,
	}
}
