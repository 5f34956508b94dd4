package locationcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-directory/internal/commands"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/migrations"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const backfillMessageType = "directory.locations.backfill"

// BackfillCanonicalSlugsCommand runs the canonical slug backfill forward, or
// drops the column when Down is set. Level restricts a forward run to one
// location type.
type BackfillCanonicalSlugsCommand struct {
	Down  bool   `json:"down,omitempty"`
	Level string `json:"level,omitempty"`
}

// Type implements command.Message.
func (BackfillCanonicalSlugsCommand) Type() string { return backfillMessageType }

func (m BackfillCanonicalSlugsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Level, validation.In(
			string(locations.TypeCountry), string(locations.TypeRegion), string(locations.TypeCity),
		).Error("level must be country, region or city")),
		validation.Field(&m.Down, validation.When(m.Level != "", validation.Empty.Error("down cannot be combined with level"))),
	)
}

func (m BackfillCanonicalSlugsCommand) LogFields() map[string]any {
	return map[string]any{"down": m.Down, "level": m.Level}
}

// BackfillHandler executes backfill commands. The report of a forward run is
// passed to the observer when one is set.
type BackfillHandler struct {
	inner *commands.Handler[BackfillCanonicalSlugsCommand]
}

func NewBackfillHandler(backfill *migrations.Backfill, logger interfaces.Logger, observe func(migrations.Report), opts ...commands.HandlerOption[BackfillCanonicalSlugsCommand]) *BackfillHandler {
	exec := func(ctx context.Context, msg BackfillCanonicalSlugsCommand) error {
		if msg.Down {
			return backfill.Down(ctx)
		}
		var report migrations.Report
		if msg.Level != "" {
			if err := backfill.EnsureColumn(ctx); err != nil {
				return err
			}
			level, err := backfill.RunLevel(ctx, locations.Type(msg.Level))
			if err != nil {
				return err
			}
			report.Levels = []migrations.LevelReport{level}
		} else {
			var err error
			if report, err = backfill.Up(ctx); err != nil {
				return err
			}
		}
		if observe != nil {
			observe(report)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BackfillCanonicalSlugsCommand]{
		commands.WithLogger[BackfillCanonicalSlugsCommand](logger),
		commands.WithOperation[BackfillCanonicalSlugsCommand]("locations.backfill"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BackfillHandler{
		inner: commands.NewHandler[BackfillCanonicalSlugsCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BackfillCanonicalSlugsCommand].Execute.
func (h *BackfillHandler) Execute(ctx context.Context, msg BackfillCanonicalSlugsCommand) error {
	return h.inner.Execute(ctx, msg)
}
