package contentcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-directory/internal/commands"
	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const saveContentMessageType = "directory.content.save"

// SaveContentCommand stores the content of one location.
type SaveContentCommand struct {
	LocationID string              `json:"location_id"`
	Request    content.SaveRequest `json:"-"`
}

// Type implements command.Message.
func (SaveContentCommand) Type() string { return saveContentMessageType }

func (m SaveContentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.LocationID) == "" {
		errs["location_id"] = validation.NewError("directory.content.save.location_id_required", "location_id is required")
	}
	if raw := strings.TrimSpace(m.Request.Type); raw != "" {
		if _, ok := locations.ParseType(raw); !ok {
			errs["type"] = validation.NewError("directory.content.save.type_invalid", "type must be country, region or city")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m SaveContentCommand) LogFields() map[string]any {
	return map[string]any{"location_id": m.LocationID}
}

type SaveContentHandler struct {
	inner *commands.Handler[SaveContentCommand]
}

func NewSaveContentHandler(service content.Service, logger interfaces.Logger, observe func(*content.Record), opts ...commands.HandlerOption[SaveContentCommand]) *SaveContentHandler {
	exec := func(ctx context.Context, msg SaveContentCommand) error {
		record, err := service.Save(ctx, msg.LocationID, msg.Request)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(record)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveContentCommand]{
		commands.WithLogger[SaveContentCommand](logger),
		commands.WithOperation[SaveContentCommand]("content.save"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveContentHandler{inner: commands.NewHandler[SaveContentCommand](exec, handlerOpts...)}
}

func (h *SaveContentHandler) Execute(ctx context.Context, msg SaveContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
