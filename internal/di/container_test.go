package di_test

import (
	"context"
	"os"
	"testing"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/di"
	"github.com/goliatone/go-directory/internal/runtimeconfig"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/interfaces"
	"github.com/goliatone/go-directory/pkg/testsupport"
)

func TestContainerDefaultsToMemory(t *testing.T) {
	ctx := context.Background()
	container, err := di.NewContainer(ctx, runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.DB() != nil || container.Backfill() != nil || container.Migrations() != nil {
		t.Fatalf("expected no database wiring for memory storage")
	}

	record, err := container.ContentService().Save(ctx, "city-1", content.SaveRequest{Title: "Leeds", Type: "city", Region: "west-yorkshire"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if record.CanonicalSlug != "/foster-agency/england/west-yorkshire/leeds" {
		t.Fatalf("unexpected canonical %q", record.CanonicalSlug)
	}

	// Memory storage still supports slug edits.
	result, err := container.ContentService().Relocate(ctx, "city-1", "leeds-city")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if len(result.Moves) != 1 {
		t.Fatalf("expected one move, got %+v", result.Moves)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Locations.Namespace = ""
	if _, err := di.NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestContainerWithSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLite(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	container, err := di.NewContainer(ctx, cfg,
		di.WithBunDB(db),
		di.WithMigrations(os.DirFS("../.."), "data/sql/migrations"),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.Capabilities().Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		t.Fatalf("expected empty database to probe without canonical_slug")
	}

	runner := container.Migrations()
	if runner == nil {
		t.Fatal("expected migrations runner")
	}
	ran, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("expected two migrations, got %v", ran)
	}
	if err := container.RefreshCapabilities(ctx); err != nil {
		t.Fatalf("RefreshCapabilities: %v", err)
	}
	if !container.Capabilities().Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		t.Fatalf("expected canonical_slug after migrations")
	}

	svc := container.ContentService()
	if _, err := svc.Save(ctx, "country-1", content.SaveRequest{Title: "Wales", Type: "country"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := svc.Load(ctx, "country-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Record == nil || loaded.CanonicalSlug != "/foster-agency/wales" {
		t.Fatalf("unexpected load %+v", loaded)
	}

	public, err := svc.LoadByCanonical(ctx, "/foster-agency/wales/")
	if err != nil {
		t.Fatalf("LoadByCanonical: %v", err)
	}
	if public.Record == nil || public.Record.ID != loaded.Record.ID {
		t.Fatalf("expected cached public read to find the record, got %+v", public)
	}
}

func TestContainerLogsThroughProvider(t *testing.T) {
	rec := &recordingProvider{}
	if _, err := di.NewContainer(context.Background(), runtimeconfig.DefaultConfig(), di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	entry := rec.find("directory.container.ready")
	if entry == nil {
		t.Fatalf("expected directory.container.ready, got %#v", rec.entries)
	}
	if entry.fields["storage"] != "memory" || entry.fields["module"] != "directory" {
		t.Fatalf("unexpected fields %v", entry.fields)
	}
}

type recordingProvider struct {
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{provider: p, fields: map[string]any{"logger": name}}
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("trace", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("error", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("fatal", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{provider: l.provider, fields: merged}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := make(map[string]any, len(l.fields)+len(args)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.provider.entries = append(l.provider.entries, recordedEntry{level: level, msg: msg, fields: fields})
}
