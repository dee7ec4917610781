package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/tinyevents/cmd/eventbench/internal/format"
	"github.com/vulntor/tinyevents/pkg/appctx"
	"github.com/vulntor/tinyevents/pkg/bench"
	"github.com/vulntor/tinyevents/pkg/config"
	"github.com/vulntor/tinyevents/pkg/logging"
)

// NewRunCommand returns the command that executes one benchmark run.
func NewRunCommand() *cobra.Command {
	var (
		overrides []string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the listener workload and verify delivery guarantees",
		Example: `  eventbench run --listeners 5000 --frames 120
  eventbench run -c bench.yaml --set bench.once_ratio=0.5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, ok := appctx.Config(cmd.Context())
			if !ok {
				return errors.New("configuration not loaded")
			}
			for _, kv := range overrides {
				key, value, found := strings.Cut(kv, "=")
				if !found {
					return fmt.Errorf("%w: --set expects key=value, got %q", config.ErrInvalidConfig, kv)
				}
				if err := mgr.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch {
				path, _ := cmd.Flags().GetString("config")
				w, err := config.NewWatcher(mgr, path, func(cfg config.Config) {
					logging.SetLevel(cfg.Log.Level)
				}, log.Logger)
				if err != nil {
					return err
				}
				defer w.Close()
				go func() { _ = w.Start(ctx) }()
			}

			report, runErr := bench.Run(ctx, benchOptions(mgr.Get()))
			formatter := format.FromCommand(cmd)
			if report != nil {
				if err := formatter.PrintReport(report); err != nil {
					return err
				}
			}
			if runErr != nil {
				log.Error().Err(runErr).Msg("bench failed")
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Override a configuration key (key=value, repeatable)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the log level when the config file changes")

	return cmd
}

func benchOptions(cfg config.Config) bench.Options {
	return bench.Options{
		Listeners:      cfg.Bench.Listeners,
		EventsPerFrame: cfg.Bench.EventsPerFrame,
		OnceRatio:      cfg.Bench.OnceRatio,
		MinPriority:    cfg.Bench.MinPriority,
		MaxPriority:    cfg.Bench.MaxPriority,
		Seed:           cfg.Bench.Seed,
		Frames:         cfg.Loop.Frames,
		Interval:       cfg.Loop.Interval,
	}
}
