package main

import (
	"os"

	"github.com/grovetools/vault/cli"
	"github.com/grovetools/vault/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"vault",
		"Cross-machine backup, restore, and migration for agent session stores",
	)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewBackupCmd())
	rootCmd.AddCommand(cmd.NewRestoreCmd())
	rootCmd.AddCommand(cmd.NewMigrateCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
