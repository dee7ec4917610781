// cmd/eventbench/main.go
package main

import (
	"errors"
	"os"

	"github.com/vulntor/tinyevents/cmd/eventbench/commands"
	"github.com/vulntor/tinyevents/cmd/eventbench/internal/format"
	"github.com/vulntor/tinyevents/pkg/bench"
	"github.com/vulntor/tinyevents/pkg/config"
)

// Exit codes.
const (
	exitOK            = 0
	exitError         = 1
	exitInvalidConfig = 2
	exitSelfCheck     = 3
)

func main() {
	root := commands.NewCommand()
	cmd, err := root.ExecuteC()
	if err != nil {
		_ = format.FromCommand(cmd).PrintError(err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidConfig):
		return exitInvalidConfig
	case errors.Is(err, bench.ErrOrderViolation), errors.Is(err, bench.ErrDeliveryMismatch):
		return exitSelfCheck
	default:
		return exitError
	}
}
