// Package main provides the version command.
package main

import (
	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/ui"
)

// versionCmd shows the client and daemon versions.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show octynectl and Octyne versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintBanner(version)
		ui.PrintKeyValue("octynectl version", version)
		ui.PrintKeyValue("Commit", commit)
		ui.PrintKeyValue("Built", date)

		_, client, err := loadSettingsAndClient(cmd)
		if err != nil {
			ui.PrintWarning("Failed to load settings: %v", err)
			return
		}
		octyneVersion, err := client.GetVersion(cmd.Context())
		if err != nil {
			ui.PrintWarning("Failed to retrieve Octyne version: %v", err)
			return
		}
		ui.PrintKeyValue("octyne version", ui.AccentStyle.Render(octyneVersion))
	},
}
