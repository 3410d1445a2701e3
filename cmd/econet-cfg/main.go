// Econet-cfg is a command-line client for PLUM ecoNET-300 heating controllers.
//
// It reads the controller's parameter registries, shows editable limits,
// writes setpoints after validation and confirmation, and can watch the
// controller live in a terminal dashboard. Known controllers are kept in a
// YAML config file; passwords never are.
//
// Usage:
//
//	econet-cfg [command] [flags]
//
// See 'econet-cfg --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/logging"
	"github.com/muurk/econet/internal/ui"
	"github.com/muurk/econet/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError renders controller errors with troubleshooting tips
func printError(err error) {
	var devErr *econet.DeviceError
	if errors.As(err, &devErr) {
		ui.NewPrinter(os.Stderr).PrintFailure(econet.GetShortErrorMessage(err), err, econet.GetTroubleshootingHint(err))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

var rootCmd = &cobra.Command{
	Use:   "econet-cfg",
	Short: "ecoNET-300 Controller Utility",
	Long: `A command-line client for PLUM ecoNET-300 heating controllers.

Reads live parameters, shows editable limits, writes setpoints and
watches the controller in a terminal dashboard.

Controllers can be addressed with --host or stored by name with
'econet-cfg controllers add'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("econet-cfg %s\n", version.Full())
	},
}
