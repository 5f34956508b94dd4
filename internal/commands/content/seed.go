package contentcmd

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-directory/internal/commands"
	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/seed"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const seedContentMessageType = "directory.content.seed"

// SeedContentCommand saves every markdown seed file under Dir.
type SeedContentCommand struct {
	Dir string `json:"dir"`
}

// Type implements command.Message.
func (SeedContentCommand) Type() string { return seedContentMessageType }

func (m SeedContentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Dir) == "" {
		errs["dir"] = validation.NewError("directory.content.seed.dir_required", "dir is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m SeedContentCommand) LogFields() map[string]any {
	return map[string]any{"dir": m.Dir}
}

// SeedResult lists the records written by one seed run.
type SeedResult struct {
	Saved []*content.Record
}

type SeedContentHandler struct {
	inner *commands.Handler[SeedContentCommand]
}

// NewSeedContentHandler reads seed files from fsys. Files are saved in path
// order and the run stops at the first failure.
func NewSeedContentHandler(service content.Service, fsys fs.FS, logger interfaces.Logger, observe func(SeedResult), opts ...commands.HandlerOption[SeedContentCommand]) *SeedContentHandler {
	exec := func(ctx context.Context, msg SeedContentCommand) error {
		entries, err := seed.LoadDir(ctx, fsys, strings.Trim(strings.TrimSpace(msg.Dir), "/"))
		if err != nil {
			return err
		}
		var result SeedResult
		for _, entry := range entries {
			record, err := service.Save(ctx, entry.LocationID, entry.Request)
			if err != nil {
				return fmt.Errorf("seed %s: %w", entry.Path, err)
			}
			result.Saved = append(result.Saved, record)
		}
		if observe != nil {
			observe(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedContentCommand]{
		commands.WithLogger[SeedContentCommand](logger),
		commands.WithOperation[SeedContentCommand]("content.seed"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SeedContentHandler{inner: commands.NewHandler[SeedContentCommand](exec, handlerOpts...)}
}

func (h *SeedContentHandler) Execute(ctx context.Context, msg SeedContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
