package main

import (
	"os"

	"github.com/spf13/cobra"

	"tillpoint/internal/interfaces/cli/migrate"
	"tillpoint/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tillpoint",
		Short: "Tillpoint - tenant authorization and entitlements",
		Long:  `Tillpoint decides who may do what in a tenant: roles, per-member permissions, plan features and usage limits.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
