package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulntor/tinyevents/cmd/eventbench/internal/format"
	"github.com/vulntor/tinyevents/pkg/version"
)

// ErrVersionConstraint is returned by "version --require" when the binary does not match.
var ErrVersionConstraint = errors.New("version constraint not satisfied")

// NewVersionCommand prints build information.
func NewVersionCommand() *cobra.Command {
	var (
		short      bool
		constraint string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if constraint != "" {
				ok, err := version.Satisfies(constraint)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s does not match %q", ErrVersionConstraint, version.Version, constraint)
				}
			}

			formatter := format.FromCommand(cmd)
			info := version.Get()
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return err
			}

			out, _ := cmd.Flags().GetString("output")
			switch format.ParseMode(out) {
			case format.ModeJSON:
				return formatter.PrintJSON(info)
			case format.ModeYAML:
				return formatter.PrintYAML(info)
			}
			return formatter.PrintTable([]string{"field", "value"}, [][]string{
				{"version", info.Version},
				{"commit", info.Commit},
				{"build date", info.BuildDate},
			})
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	cmd.Flags().StringVar(&constraint, "require", "", "Fail unless the version satisfies a semver constraint")

	return cmd
}
