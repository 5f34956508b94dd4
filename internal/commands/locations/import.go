package locationcmd

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-directory/internal/commands"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const importMessageType = "directory.locations.import"

// ImportDatasetCommand loads a YAML or JSON reference dataset from Path.
type ImportDatasetCommand struct {
	Path string `json:"path"`
}

// Type implements command.Message.
func (ImportDatasetCommand) Type() string { return importMessageType }

func (m ImportDatasetCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Path) == "" {
		errs["path"] = validation.NewError("directory.locations.import.path_required", "path is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m ImportDatasetCommand) LogFields() map[string]any {
	return map[string]any{"path": m.Path}
}

type ImportHandler struct {
	inner *commands.Handler[ImportDatasetCommand]
}

// NewImportHandler reads datasets from fsys and imports them through service.
func NewImportHandler(service locations.Service, fsys fs.FS, logger interfaces.Logger, observe func(locations.ImportResult), opts ...commands.HandlerOption[ImportDatasetCommand]) *ImportHandler {
	exec := func(ctx context.Context, msg ImportDatasetCommand) error {
		file, err := fsys.Open(strings.TrimPrefix(strings.TrimSpace(msg.Path), "/"))
		if err != nil {
			return fmt.Errorf("open dataset: %w", err)
		}
		defer file.Close()

		dataset, err := locations.ParseDataset(file)
		if err != nil {
			return err
		}
		result, err := service.Import(ctx, dataset)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportDatasetCommand]{
		commands.WithLogger[ImportDatasetCommand](logger),
		commands.WithOperation[ImportDatasetCommand]("locations.import"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportHandler{inner: commands.NewHandler[ImportDatasetCommand](exec, handlerOpts...)}
}

func (h *ImportHandler) Execute(ctx context.Context, msg ImportDatasetCommand) error {
	return h.inner.Execute(ctx, msg)
}
