package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFlag string
	return newRootCommandWithContext(newCommandContext(&envFlag), &envFlag)
}

func newRootCommandWithContext(ctx *commandContext, envFlag *string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "journal-admin",
		Short:         "Journal backend maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(envFlag, "env", "", "Path to the .env file (default .env)")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newCreateAdminCommand(ctx))
	rootCmd.AddCommand(newResetIssuesCommand(ctx))
	rootCmd.AddCommand(newMigrateAuthorRolesCommand(ctx))
	rootCmd.AddCommand(newSeedIssuesCommand(ctx))
	rootCmd.AddCommand(newIssuesCommand(ctx))
	rootCmd.AddCommand(newArticlesCommand(ctx))

	return rootCmd
}
