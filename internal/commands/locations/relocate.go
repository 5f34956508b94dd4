package locationcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-directory/internal/commands"
	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const relocateMessageType = "directory.locations.relocate"

// RelocateLocationCommand changes the slug of a location and moves the
// canonical slugs and content of its subtree.
type RelocateLocationCommand struct {
	LocationID string `json:"location_id"`
	Slug       string `json:"slug"`
}

// Type implements command.Message.
func (RelocateLocationCommand) Type() string { return relocateMessageType }

func (m RelocateLocationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.LocationID, validation.Required.Error("location_id is required")),
		validation.Field(&m.Slug, validation.Required.Error("slug is required")),
	)
}

func (m RelocateLocationCommand) LogFields() map[string]any {
	return map[string]any{"location_id": m.LocationID, "slug": m.Slug}
}

type RelocateHandler struct {
	inner *commands.Handler[RelocateLocationCommand]
}

func NewRelocateHandler(service content.Service, logger interfaces.Logger, observe func(content.RelocateResult), opts ...commands.HandlerOption[RelocateLocationCommand]) *RelocateHandler {
	exec := func(ctx context.Context, msg RelocateLocationCommand) error {
		result, err := service.Relocate(ctx, msg.LocationID, msg.Slug)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RelocateLocationCommand]{
		commands.WithLogger[RelocateLocationCommand](logger),
		commands.WithOperation[RelocateLocationCommand]("locations.relocate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RelocateHandler{inner: commands.NewHandler[RelocateLocationCommand](exec, handlerOpts...)}
}

func (h *RelocateHandler) Execute(ctx context.Context, msg RelocateLocationCommand) error {
	return h.inner.Execute(ctx, msg)
}
