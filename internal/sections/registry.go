package sections

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"sync"
)

var (
	ErrHandlerTypeRequired = errors.New("sections: handler type required")
	ErrHandlerExists       = errors.New("sections: handler already registered")
	ErrHandlerNil          = errors.New("sections: handler is nil")
)

// Handler renders one section.
type Handler func(ctx context.Context, section Section) (template.HTML, error)

// Registry maps section types to handlers. Types with no handler, and
// sections whose data degraded to UnknownData, go to the fallback.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// NewRegistry returns an empty registry using GenericFallback.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler), fallback: GenericFallback}
}

// NewDefaultRegistry returns a registry holding the built-in handlers.
func NewDefaultRegistry(md *Markdown) *Registry {
	r := NewRegistry()
	for sectionType, handler := range builtinHandlers(md) {
		_ = r.Register(sectionType, handler)
	}
	return r
}

func (r *Registry) Register(sectionType string, handler Handler) error {
	sectionType = strings.TrimSpace(sectionType)
	if sectionType == "" {
		return ErrHandlerTypeRequired
	}
	if handler == nil {
		return ErrHandlerNil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[sectionType]; exists {
		return ErrHandlerExists
	}
	r.handlers[sectionType] = handler
	return nil
}

// Lookup returns the handler registered for sectionType.
func (r *Registry) Lookup(sectionType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[sectionType]
	return handler, ok
}

// Types lists the registered types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for sectionType := range r.handlers {
		out = append(out, sectionType)
	}
	return out
}

// Resolve returns the handler for section and whether it is the fallback.
func (r *Registry) Resolve(section Section) (Handler, bool) {
	if _, raw := section.Data.(UnknownData); !raw && section.Type != "" {
		if handler, ok := r.Lookup(section.Type); ok {
			return handler, false
		}
	}
	return r.fallback, true
}
