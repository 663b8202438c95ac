// Package main provides the account management commands.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/retrixe/octynectl/internal/ui"
)

// accountsCmd is the parent command for account operations.
var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account", "users", "user"},
	Short:   "Manage Octyne accounts",
}

var accountsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"show"},
	Short:   "List all accounts",
	Args:    cobra.NoArgs,
	RunE:    runAccountsList,
}

var accountsCreateCmd = &cobra.Command{
	Use:     "create <username>",
	Aliases: []string{"add"},
	Short:   "Create a new account",
	Long:    "Create a new Octyne account. You will be prompted for a password.",
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountsCreate,
}

var accountsDeleteCmd = &cobra.Command{
	Use:     "delete <username>...",
	Aliases: []string{"remove"},
	Short:   "Delete accounts",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAccountsDelete,
}

var accountsPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change the password of an existing account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsPasswd,
}

func init() {
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsCreateCmd)
	accountsCmd.AddCommand(accountsDeleteCmd)
	accountsCmd.AddCommand(accountsPasswdCmd)
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	accounts, err := client.GetAccounts(cmd.Context())
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintInfo("The local Octyne instance has no accounts.")
		return nil
	}

	sort.Strings(accounts)
	ui.PrintInfo("Accounts registered with the local Octyne instance:")
	for _, account := range accounts {
		ui.PrintRaw(account)
	}
	return nil
}

func runAccountsCreate(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	pass, err := ui.PromptNewPassword()
	if err != nil {
		return err
	}
	if err := client.CreateAccount(cmd.Context(), args[0], pass); err != nil {
		return err
	}
	ui.PrintSuccess("Created account %s", args[0])
	return nil
}

func runAccountsDelete(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	failed := false
	for _, username := range args {
		if err := client.DeleteAccount(cmd.Context(), username); err != nil {
			ui.PrintError("failed to delete account %s: %v", username, err)
			failed = true
			continue
		}
		ui.PrintSuccess("Deleted account %s", username)
	}
	if failed {
		return exitStatus(1)
	}
	return nil
}

func runAccountsPasswd(cmd *cobra.Command, args []string) error {
	_, client, err := loadSettingsAndClient(cmd)
	if err != nil {
		return err
	}

	pass, err := ui.PromptNewPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := client.ChangePassword(cmd.Context(), args[0], pass); err != nil {
		return err
	}
	ui.PrintSuccess("Changed password for account %s", args[0])
	return nil
}
