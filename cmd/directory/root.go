package main

import (
	"context"
	"fmt"
	"io/fs"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	directory "github.com/goliatone/go-directory"
	"github.com/goliatone/go-directory/commands"
)

var moduleBuilder = func(ctx context.Context, cfg directory.Config) (*directory.Module, error) {
	return directory.New(ctx, cfg)
}

// app carries the state shared by subcommands for one invocation.
type app struct {
	configFile string
	cfg        directory.Config
	module     *directory.Module
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "directory",
		Short: "Foster agency location directory",
		Long: `directory serves location content under canonical slugs and maintains
the backing store: schema migrations, the canonical slug backfill, dataset
imports and markdown seeds.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./directory.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newBackfillCmd(a),
		newImportCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	module, err := moduleBuilder(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	a.module = module
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.module == nil {
		return nil
	}
	err := a.module.Close()
	a.module = nil
	return err
}

// dispatch registers the container handlers for the duration of one command
// and sends msg through the go-command dispatcher.
func dispatch[T command.Message](ctx context.Context, a *app, files fs.FS, observers commands.Observers, msg T) error {
	result, err := commands.RegisterContainerCommands(a.module.Container(), commands.RegistrationOptions{
		Dispatcher: commands.Dispatcher{},
		Files:      files,
		Observers:  observers,
	})
	if err != nil {
		return err
	}
	defer result.Unsubscribe()

	return dispatcher.Dispatch(ctx, msg)
}
