// Package main provides the app lifecycle commands.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/api"
	"github.com/retrixe/octynectl/internal/ui"
)

var restartKill bool

func init() {
	restartCmd.Flags().BoolVarP(&restartKill, "kill", "k", false, "Kill the app instead of gracefully stopping it before restarting")
}

// listCmd lists all apps managed by the daemon.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"list-servers"},
	Short:   "List apps managed by Octyne",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

// startCmd starts apps.
var startCmd = &cobra.Command{
	Use:   "start <app>...",
	Short: "Start apps managed by Octyne",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args, api.ActionStart, "start", "Started")
	},
}

// stopCmd gracefully stops apps.
var stopCmd = &cobra.Command{
	Use:   "stop <app>...",
	Short: "Gracefully stop apps managed by Octyne",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args, api.ActionTerm, "stop", "Stopped")
	},
}

// killCmd kills apps.
var killCmd = &cobra.Command{
	Use:   "kill <app>...",
	Short: "Kill apps managed by Octyne",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args, api.ActionKill, "kill", "Killed")
	},
}

// restartCmd stops then starts apps.
var restartCmd = &cobra.Command{
	Use:   "restart <app>...",
	Short: "Restart apps managed by Octyne",
	Long: `Restart apps managed by Octyne.

Each app is gracefully stopped (or killed with --kill) and then started again.
Apps are restarted one after another; a failure does not stop the rest.

Examples:
  octynectl restart minecraft
  octynectl restart -k minecraft proxy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRestart,
}

func runList(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	servers, err := client.GetServers(cmd.Context())
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		ui.PrintInfo("No apps are managed by the local Octyne instance.")
		return nil
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	table := ui.NewTable("Name", "Status")
	for _, name := range names {
		info := servers[name]
		table.AddRow(name, styledStatus(info.Status)+toDeleteSuffix(info.ToDelete))
	}
	table.Render()
	ui.PrintDim("%d apps", table.Len())
	return nil
}

func runAction(cmd *cobra.Command, args []string, action api.ServerAction, verb, done string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	return forEachApp(args, func(name string) error {
		if err := client.PostServer(cmd.Context(), name, action); err != nil {
			return fmt.Errorf("failed to %s %s: %w", verb, name, err)
		}
		ui.PrintSuccess("%s %s", done, name)
		return nil
	})
}

func runRestart(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	stop := api.ActionTerm
	if restartKill {
		stop = api.ActionKill
	}

	return forEachApp(args, func(name string) error {
		if err := client.PostServer(cmd.Context(), name, stop); err != nil {
			return fmt.Errorf("failed to stop %s before restart: %w", name, err)
		}
		if err := client.PostServer(cmd.Context(), name, api.ActionStart); err != nil {
			return fmt.Errorf("failed to start %s after restart: %w", name, err)
		}
		ui.PrintSuccess("Restarted %s", name)
		return nil
	})
}

// statusName returns the display name for an app status code.
func statusName(status int) string {
	switch status {
	case api.StatusOffline:
		return "Offline"
	case api.StatusOnline:
		return "Online"
	case api.StatusCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

func styledStatus(status int) string {
	name := statusName(status)
	switch status {
	case api.StatusOnline:
		return ui.StatusOnlineStyle.Render(name)
	case api.StatusCrashed:
		return ui.StatusCrashedStyle.Render(name)
	default:
		return ui.StatusOfflineStyle.Render(name)
	}
}

func toDeleteSuffix(toDelete bool) string {
	if toDelete {
		return " (marked for deletion)"
	}
	return ""
}
