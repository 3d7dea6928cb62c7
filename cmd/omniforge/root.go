package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	projectDir string
	verbose    bool
	logFormat  string
	noColor    bool
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "omniforge",
		Short: "Phase-ordered, idempotent project setup",
		Long: `OmniForge runs a project's setup units in phase order. Each unit is a
script with a YAML header declaring its phase, settings, flags and package
dependencies. Units that already succeeded are recorded in a ledger and
skipped on the next run unless forced.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Commands that tokenize their own flags call prepare themselves.
			if cmd.DisableFlagParsing {
				return nil
			}
			return prepare(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.omniforge.yaml)")
	pf.StringVarP(&projectDir, "project", "C", "", "project root (default is the current directory)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&logFormat, "log-format", logging.FormatText, "log format: text, json")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newUnitsCmd(),
		newLedgerCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := execute(ctx, os.Args[1:], os.Stdout); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

// initConfig loads configuration from the config file and environment.
func initConfig(cmd *cobra.Command) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".omniforge")
	}

	viper.SetEnvPrefix("OMNIFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	pf := cmd.Root().PersistentFlags()
	for _, name := range []string{"verbose", "log-format", "no-color", "project"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

// prepare loads configuration, builds the logger and stores it in the
// command context.
func prepare(cmd *cobra.Command) error {
	initConfig(cmd)

	logger, err := logging.NewLogger(viper.GetString("log-format"), viper.GetBool("verbose"), os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger))
	return nil
}

// reportError logs the failure with its kind and, when known, the unit.
func reportError(err error) {
	args := []any{"kind", string(apperrors.KindOf(err))}
	if unit := failingUnit(err); unit != "" {
		args = append(args, "unit", unit)
	}
	args = append(args, "error", err)
	slog.Error("command failed", args...)
}

func failingUnit(err error) string {
	return apperrors.FailedUnit(err)
}
