// Package main provides the daemon config commands.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/ui"
)

// fallbackEditors are tried in order when $EDITOR is unset.
var fallbackEditors = []string{"nano", "vi", "notepad.exe"}

// configCmd is the parent command for daemon config operations.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View, edit or reload Octyne's config",
}

var configViewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"show"},
	Short:   "Show Octyne's config",
	Args:    cobra.NoArgs,
	RunE:    runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:     "edit [file]",
	Aliases: []string{"modify"},
	Short:   "Modify Octyne's config in a text editor or from a file",
	Long: `Modify Octyne's config in a text editor.

If a file is given, its contents become the new config and no editor is opened.
$EDITOR selects the text editor, falling back to nano, vi or notepad.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigEdit,
}

var configReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Have Octyne reload its config from disk",
	Args:  cobra.NoArgs,
	RunE:  runConfigReload,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configReloadCmd)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	cfg, err := client.GetConfig(cmd.Context())
	if err != nil {
		return err
	}
	ui.PrintRaw(strings.TrimRight(cfg, " \t\r\n"))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		newConfig, err := readConfigFile(args[0])
		if err != nil {
			return err
		}
		if err := client.PatchConfig(cmd.Context(), newConfig); err != nil {
			return err
		}
		ui.PrintSuccess("Saved new config copied from %s", args[0])
		return nil
	}

	editor, err := findEditor()
	if err != nil {
		return err
	}

	current, err := client.GetConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve config: %w", err)
	}

	edited, err := editInEditor(editor, current)
	if err != nil {
		return err
	}
	if edited == current {
		ui.PrintInfo("No changes made to config.")
		return nil
	}

	if err := client.PatchConfig(cmd.Context(), edited); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	ui.PrintSuccess("Saved new config")
	return nil
}

func runConfigReload(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	if err := client.ReloadConfig(cmd.Context()); err != nil {
		return err
	}
	ui.PrintSuccess("Reloaded config")
	return nil
}

// readConfigFile reads a replacement config, rejecting directories.
func readConfigFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s cannot be accessed: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// findEditor returns $EDITOR, or the first fallback editor found on PATH.
func findEditor() (string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, nil
	}
	for _, name := range fallbackEditors {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no editor found, set $EDITOR to your preferred editor")
}

// editInEditor writes content to a temp file, opens it in editor and returns
// the saved contents.
func editInEditor(editor, content string) (string, error) {
	f, err := os.CreateTemp("", "octyne-config-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write config to temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write config to temp file: %w", err)
	}

	// $EDITOR may carry arguments, e.g. "code --wait".
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return "", errors.New("no editor found, set $EDITOR to your preferred editor")
	}
	log.Debug("Opening editor", "editor", fields[0], "file", path)
	c := exec.Command(fields[0], append(fields[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read temp file: %w", err)
	}
	return string(data), nil
}
