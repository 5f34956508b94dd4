package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-directory/pkg/interfaces"
)

const (
	rootModule       = "directory"
	locationsModule  = "directory.locations"
	contentModule    = "directory.content"
	sectionsModule   = "directory.sections"
	migrationsModule = "directory.migrations"
	httpModule       = "directory.http"
)

const (
	fieldLocationID    = "location_id"
	fieldCanonicalSlug = "canonical_slug"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields a no-op logger. Every logger carries a "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if strings.TrimSpace(module) == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// LocationsLogger returns the logger reserved for the location hierarchy.
func LocationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, locationsModule)
}

// ContentLogger returns the logger reserved for the content resolution engine.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// SectionsLogger returns the logger reserved for section decoding and rendering.
func SectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sectionsModule)
}

// MigrationsLogger returns the logger reserved for schema migrations and backfills.
func MigrationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, migrationsModule)
}

// HTTPLogger returns the logger reserved for HTTP adapters.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithLocation annotates logger with the location id and, when known, the
// canonical slug the operation resolved to.
func WithLocation(logger interfaces.Logger, locationID, canonicalSlug string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(locationID); trimmed != "" {
		fields[fieldLocationID] = trimmed
	}
	if trimmed := strings.TrimSpace(canonicalSlug); trimmed != "" {
		fields[fieldCanonicalSlug] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
