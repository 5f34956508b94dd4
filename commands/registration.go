package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-directory/internal/commands"
	contentcmd "github.com/goliatone/go-directory/internal/commands/content"
	locationcmd "github.com/goliatone/go-directory/internal/commands/locations"
	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/di"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/migrations"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

type (
	BackfillCanonicalSlugsCommand = locationcmd.BackfillCanonicalSlugsCommand
	ImportDatasetCommand          = locationcmd.ImportDatasetCommand
	RelocateLocationCommand       = locationcmd.RelocateLocationCommand
	SaveContentCommand            = contentcmd.SaveContentCommand
	SeedContentCommand            = contentcmd.SeedContentCommand
	SeedResult                    = contentcmd.SeedResult
)

// CommandRegistry records command handlers so hosts can expose them via CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// Observers receive the outcome of successful commands.
type Observers struct {
	Backfill func(migrations.Report)
	Import   func(locations.ImportResult)
	Relocate func(content.RelocateResult)
	Save     func(*content.Record)
	Seed     func(SeedResult)
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
	// Files is where import datasets and seed directories are read from.
	// Defaults to the working directory.
	Files     fs.FS
	Observers Observers
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher integrations. The backfill
// handler is only built when the container has a database.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}
	files := opts.Files
	if files == nil {
		files = os.DirFS(".")
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return commands.CommandLogger(provider, module)
	}

	// Location commands.
	if service := container.LocationService(); service != nil {
		register(locationcmd.NewImportHandler(service, files, loggerFor("locations"), opts.Observers.Import))
	}
	if backfill := container.Backfill(); backfill != nil {
		register(locationcmd.NewBackfillHandler(backfill, loggerFor("locations"), opts.Observers.Backfill))
	}

	// Content commands.
	if service := container.ContentService(); service != nil {
		contentLogger := loggerFor("content")
		register(locationcmd.NewRelocateHandler(service, loggerFor("locations"), opts.Observers.Relocate))
		register(contentcmd.NewSaveContentHandler(service, contentLogger, opts.Observers.Save))
		register(contentcmd.NewSeedContentHandler(service, files, contentLogger, opts.Observers.Seed))
	}

	if len(result.Handlers) == 0 {
		return result, errors.Join(errs, errors.New("no command handlers registered; ensure services are configured"))
	}

	return result, errs
}

// Dispatcher subscribes directory handlers to the go-command dispatcher.
type Dispatcher struct {
	// MaxRetries is passed to the runner of every subscription when positive.
	MaxRetries int
}

var _ CommandDispatcher = Dispatcher{}

func (d Dispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *locationcmd.BackfillHandler:
		// Backfill levels are not retried; a failed level is rerun explicitly.
		return dispatcher.SubscribeCommand(h), nil
	case *locationcmd.ImportHandler:
		if d.MaxRetries > 0 {
			return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.MaxRetries)), nil
		}
		return dispatcher.SubscribeCommand(h), nil
	case *locationcmd.RelocateHandler:
		if d.MaxRetries > 0 {
			return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.MaxRetries)), nil
		}
		return dispatcher.SubscribeCommand(h), nil
	case *contentcmd.SaveContentHandler:
		if d.MaxRetries > 0 {
			return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.MaxRetries)), nil
		}
		return dispatcher.SubscribeCommand(h), nil
	case *contentcmd.SeedContentHandler:
		if d.MaxRetries > 0 {
			return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.MaxRetries)), nil
		}
		return dispatcher.SubscribeCommand(h), nil
	}
	return nil, fmt.Errorf("commands: unsupported handler %T", handler)
}
