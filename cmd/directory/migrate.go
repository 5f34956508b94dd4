package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	directory "github.com/goliatone/go-directory"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, revert or list schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ran, err := a.module.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ran) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}
			for _, name := range ran {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := a.module.Migrations()
			if runner == nil {
				return directory.ErrNoDatabase
			}
			name, err := runner.Down(cmd.Context())
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to revert")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %s\n", name)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := a.module.Migrations()
			if runner == nil {
				return directory.ErrNoDatabase
			}
			rows, err := runner.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAPPLIED AT")
			for _, row := range rows {
				appliedAt := "pending"
				if row.Applied && row.AppliedAt != nil {
					appliedAt = row.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\n", row.Name, appliedAt)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
