package main

import (
	"fmt"

	"journal-api/models"

	"github.com/spf13/cobra"
)

func newResetIssuesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-issues",
		Short: "Clear issue, article number and DOI on every published article",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.publicationService()
			if err != nil {
				return err
			}
			count, err := svc.ResetAllIssues(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d articles\n", count)
			return nil
		},
	}
}

func newSeedIssuesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-issues",
		Short: "Create the first regular and special issue of volume 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.publicationService()
			if err != nil {
				return err
			}

			one, two := 1, 2
			seeds := []models.EnsureIssueRequest{
				{Volume: 1, Issue: &one, Title: "Vol 1 Issue 1", Type: models.IssueRegular},
				{Volume: 1, Issue: &two, Title: "Vol 1 Issue 2 (Special)", Type: models.IssueSpecial},
			}
			for _, seed := range seeds {
				issue, created, err := svc.EnsureIssue(cmd.Context(), seed)
				if err != nil {
					return err
				}
				state := "exists"
				if created {
					state = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vol %d Issue %d (%s): %s\n", issue.Volume, issue.IssueNumber, issue.Type, state)
			}
			return nil
		},
	}
}

func newIssuesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Inspect journal issues",
	}

	var issueType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List published issues, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.publicationService()
			if err != nil {
				return err
			}
			issues, err := svc.ListIssues(cmd.Context(), models.IssueListParams{Type: models.IssueType(issueType)})
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issues")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), issueTable(issues))
			return nil
		},
	}
	list.Flags().StringVar(&issueType, "type", "", "Filter by issue type (regular or special)")

	cmd.AddCommand(list)
	return cmd
}
