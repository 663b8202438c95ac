// Package main provides the console and logs commands.
package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/console"
	"github.com/retrixe/octynectl/internal/ui"
)

var consoleNoInteractive bool

func init() {
	consoleCmd.Flags().BoolVar(&consoleNoInteractive, "no-interactive", false, "Do not switch the terminal to full-screen mode")
}

// consoleCmd attaches to an app's console.
var consoleCmd = &cobra.Command{
	Use:   "console <app>",
	Short: "Attach to the console of an app",
	Long: `Attach to the console of an app managed by Octyne.

Output from the app is streamed to the terminal and every line typed is sent
to the app as a command. Press Ctrl+C to detach; the app keeps running.

When stdout is a terminal the console takes over the screen until you detach.
Use --no-interactive (or no_interactive: true in the settings file) to keep
output inline.`,
	Args: cobra.ExactArgs(1),
	RunE: runConsole,
}

// logsCmd prints an app's console backlog.
var logsCmd = &cobra.Command{
	Use:   "logs <app>",
	Short: "Print the recent console output of an app",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func runConsole(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := validateAppName(name); err != nil {
		return err
	}

	settings, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}
	keepalive, err := settings.Keepalive()
	if err != nil {
		return err
	}

	var screen console.Screen
	if ui.ShouldUseFullscreen(consoleNoInteractive || settings.NoInteractive, os.Stdout) {
		screen = ui.NewFullscreen(os.Stdout)
	}

	session := console.NewSession(console.Options{
		Target:            name,
		Dial:              console.ClientDialer(client),
		Input:             os.Stdin,
		Output:            os.Stdout,
		ErrOutput:         os.Stderr,
		Screen:            screen,
		KeepaliveInterval: keepalive,
		Logger:            log.Default(),
	})

	outcome := session.Run(cmd.Context())
	log.Debug("Console session finished", "app", name, "status", outcome.Status, "protocol", session.Version())
	if outcome.Status != 0 {
		return exitStatus(outcome.Status)
	}
	return nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := validateAppName(name); err != nil {
		return err
	}

	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	text, err := console.FetchLogs(cmd.Context(), console.ClientDialer(client), name)
	if err != nil {
		return err
	}
	ui.PrintRaw(strings.TrimRight(text, " \t\r\n"))
	return nil
}
