package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/tinyevents/cmd/eventbench/internal/format"
	"github.com/vulntor/tinyevents/pkg/appctx"
	"github.com/vulntor/tinyevents/pkg/config"
	"github.com/vulntor/tinyevents/pkg/logging"
)

const cliExecutable = "eventbench"

// NewCommand constructs the top-level eventbench command, wiring global flags, configuration
// loading and logging setup shared by every subcommand.
func NewCommand() *cobra.Command {
	var (
		configFile     string
		outputMode     string
		verbosityCount int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "eventbench drives a synthetic workload through the tinyevents dispatcher",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := format.ValidateMode(outputMode); err != nil {
				return err
			}

			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			logging.SetFormat(cfg.Log.Format, cfg.Log.NoColor)
			if err := logging.ConfigureGlobalLogging(logging.VerbosityLevel(cfg.Log.Level, verbosityCount)); err != nil {
				return err
			}
			log.Debug().Str("config", configFile).Msg("configuration loaded")

			ctx := appctx.WithConfig(cmd.Context(), mgr)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().StringVarP(&outputMode, "output", "o", string(format.ModeTable), "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Print results only")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
