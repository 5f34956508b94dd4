package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	directory "github.com/goliatone/go-directory"
	"github.com/goliatone/go-directory/commands"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/migrations"
)

func newBackfillCmd(a *app) *cobra.Command {
	var (
		down  bool
		level string
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Populate canonical slugs level by level, or drop the column with --down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.module.Container().Backfill() == nil {
				return directory.ErrNoDatabase
			}
			out := cmd.OutOrStdout()
			observers := commands.Observers{
				Backfill: func(report migrations.Report) {
					for _, lvl := range report.Levels {
						fmt.Fprintf(out, "%-8s updated=%d unresolved=%d\n", lvl.Type, lvl.Updated, lvl.Unresolved)
					}
				},
			}
			msg := commands.BackfillCanonicalSlugsCommand{Down: down, Level: level}
			if err := dispatch(cmd.Context(), a, nil, observers, msg); err != nil {
				return err
			}
			if down {
				fmt.Fprintln(out, "canonical_slug column dropped")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "drop the canonical_slug column")
	cmd.Flags().StringVar(&level, "level", "", "run a single level: country, region or city")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML or JSON location dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, name, err := splitPath(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			observers := commands.Observers{
				Import: func(result locations.ImportResult) {
					fmt.Fprintf(out, "imported %d locations\n", result.Total())
				},
			}
			return dispatch(cmd.Context(), a, files, observers, commands.ImportDatasetCommand{Path: name})
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <dir>",
		Short: "Save every markdown seed file under dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			observers := commands.Observers{
				Seed: func(result commands.SeedResult) {
					for _, record := range result.Saved {
						fmt.Fprintf(out, "saved %s\n", record.CanonicalSlug)
					}
				},
			}
			return dispatch(cmd.Context(), a, os.DirFS(dir), observers, commands.SeedContentCommand{Dir: "."})
		},
	}
}

// splitPath roots an fs.FS at the file's directory.
func splitPath(path string) (fs.FS, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	return os.DirFS(filepath.Dir(abs)), filepath.Base(abs), nil
}
