// Package main provides the app status command.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/ui"
)

// statusCmd shows resource usage for one app.
var statusCmd = &cobra.Command{
	Use:     "status <app>",
	Aliases: []string{"info"},
	Short:   "Show the status of an app",
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := validateAppName(name); err != nil {
		return err
	}

	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	status, err := client.GetServer(cmd.Context(), name)
	if err != nil {
		return err
	}

	ui.PrintRaw(ui.TitleStyle.Render(fmt.Sprintf("Status of app `%s`", name)))
	ui.PrintKeyValue("Status", styledStatus(status.Status)+toDeleteSuffix(status.ToDelete))
	ui.PrintKeyValue("CPU usage", fmt.Sprintf("%.2f%%", status.CPUUsage))
	ui.PrintKeyValue("Memory usage", formatMemory(status.MemoryUsage, status.TotalMemory))
	ui.PrintKeyValue("Uptime", formatUptime(time.Duration(status.Uptime)))
	return nil
}

// formatMemory renders used/total memory with the percentage used.
func formatMemory(used, total int64) string {
	if total <= 0 {
		return humanize.IBytes(uint64(max(used, 0)))
	}
	percent := float64(used) / float64(total) * 100
	return fmt.Sprintf("%.2f%% (%s / %s)", percent, humanize.IBytes(uint64(max(used, 0))), humanize.IBytes(uint64(total)))
}

// formatUptime renders d as "1 day 2 hours 3 minutes 4 seconds", omitting
// zero units. An app that is not running has an empty uptime.
func formatUptime(d time.Duration) string {
	units := []struct {
		name string
		size time.Duration
	}{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
	}

	var parts []string
	for _, u := range units {
		n := d / u.size
		d -= n * u.size
		switch {
		case n == 1:
			parts = append(parts, "1 "+u.name)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}
	return strings.Join(parts, " ")
}
