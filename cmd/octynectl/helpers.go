// Package main provides shared helper functions for CLI commands.
package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/api"
	"github.com/retrixe/octynectl/internal/config"
	"github.com/retrixe/octynectl/internal/ui"
)

// maxAppNameLen bounds app names passed on the command line.
const maxAppNameLen = 128

// exitStatus is returned by commands that already printed their failure.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// validateAppName checks that an app name is safe to place in a request path.
//
// Rules:
//   - Must be non-empty
//   - Max 128 characters
//   - No whitespace, control characters or path separators
//
// Parameters:
//   - name: The name to validate
//
// Returns:
//   - error: A descriptive error if validation fails, nil otherwise
func validateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("app name cannot be empty")
	}

	if len(name) > maxAppNameLen {
		return fmt.Errorf("app name too long (%d chars, max %d)", len(name), maxAppNameLen)
	}

	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("app name %q cannot contain whitespace", name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("app name %q cannot contain path separators", name)
	}

	return nil
}

// loadSettingsAndClient loads the settings file and builds a client for the
// socket chosen by --socket, $OCTYNE_SOCKET, the settings file or the default.
//
// Parameters:
//   - cmd: The running command, for the --socket flag
//
// Returns:
//   - *config.Settings: The loaded settings
//   - *api.Client: A client for the resolved socket
//   - error: Any error loading the settings
func loadSettingsAndClient(cmd *cobra.Command) (*config.Settings, *api.Client, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	flagValue, _ := cmd.Flags().GetString("socket")
	socketPath := settings.ResolveSocketPath(flagValue)
	log.Debug("Using Octyne socket", "path", socketPath)
	return settings, api.NewClient(socketPath), nil
}

// forEachApp runs fn for every app name, printing failures as they happen.
// It returns exitStatus(1) if any call failed.
func forEachApp(names []string, fn func(name string) error) error {
	failed := false
	for _, name := range names {
		if err := validateAppName(name); err != nil {
			ui.PrintError("%v", err)
			failed = true
			continue
		}
		if err := fn(name); err != nil {
			ui.PrintError("%v", err)
			failed = true
		}
	}
	if failed {
		return exitStatus(1)
	}
	return nil
}
