package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "authctl",
		Short: "Administer memberhub accounts and schema",
		Long: `authctl runs maintenance tasks against the memberhub database.

It reads the same environment (or .env file) as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		seedAdminCmd(),
		setRoleCmd(),
		listUsersCmd(),
	)

	return rootCmd
}
