// Package main provides the entry point for octynectl.
//
// octynectl controls a local Octyne daemon over its Unix socket: it lists and
// manages apps, attaches to their consoles, and edits the daemon's config and
// accounts.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/retrixe/octynectl/internal/ui"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "octynectl",
	Short: "Control a local Octyne daemon",
	Long: `octynectl is a command-line interface to the Octyne process manager.

It talks to the Octyne daemon running on this machine over its Unix socket,
so no login is needed.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		ui.SetQuietMode(quiet)
	},
}

// Execute runs the root command and exits with the command's status. Errors
// are printed once here; an exitStatus means the command already reported.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var status exitStatus
	if errors.As(err, &status) {
		os.Exit(int(status))
	}
	ui.PrintError("%v", err)
	os.Exit(1)
}

func init() {
	rootCmd.SetVersionTemplate("octynectl {{.Version}}\n")

	addGlobalFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(accountsCmd)
}

// addGlobalFlags registers the flags every command accepts.
func addGlobalFlags(flags *pflag.FlagSet) {
	flags.Bool("debug", false, "Enable debug logging")
	flags.BoolP("quiet", "q", false, "Suppress non-essential output")
	flags.String("socket", "", "Path to the Octyne Unix socket (default $TMPDIR/octyne.sock.42069)")
}

func main() {
	Execute()
}
