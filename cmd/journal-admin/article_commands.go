package main

import (
	"fmt"

	"journal-api/models"

	"github.com/spf13/cobra"
)

func newMigrateAuthorRolesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-author-roles",
		Short: "Backfill author order and role labels on stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.articleService()
			if err != nil {
				return err
			}
			updated, err := svc.MigrateAuthorRoles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d articles\n", updated)
			return nil
		},
	}
}

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Inspect submitted articles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.articleService()
			if err != nil {
				return err
			}
			stats, err := svc.GetStats(cmd.Context(), models.CurrentUser{Role: models.RoleAdmin})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statsTable(stats))
			return nil
		},
	})
	return cmd
}
