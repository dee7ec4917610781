package format

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// FromCommand builds a Formatter from the command's writers and its output, quiet and no-color
// flags. Color is also disabled when fatih/color detected a non-terminal or NO_COLOR.
func FromCommand(cmd *cobra.Command) Formatter {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	mode := ModeTable
	if flag := cmd.Flags().Lookup("output"); flag != nil {
		mode = ParseMode(flag.Value.String())
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")

	return New(stdout, stderr, mode, quiet, !noColor && !color.NoColor)
}
