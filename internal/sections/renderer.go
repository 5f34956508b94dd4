package sections

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

var placeholderTemplate = template.Must(template.New("placeholder").Parse(
	`<div class="section-error" data-section-type="{{.}}">Component failed to render</div>`))

// Rendered is the output of one section.
type Rendered struct {
	Key      string
	Type     string
	HTML     template.HTML
	Fallback bool
	Failed   bool
}

// Renderer dispatches sections through a Registry. A handler that returns an
// error or panics yields a placeholder for that section only.
type Renderer struct {
	registry *Registry
	logger   interfaces.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the logger that reports failed and degraded sections.
func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logging.Ensure(logger)
	}
}

func NewRenderer(registry *Registry, opts ...RendererOption) *Renderer {
	if registry == nil {
		registry = NewRegistry()
	}
	r := &Renderer{registry: registry, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderSection renders section at index.
func (r *Renderer) RenderSection(ctx context.Context, index int, section Section) (out Rendered) {
	out = Rendered{Key: section.StableKey(index), Type: section.Type}
	handler, fallback := r.registry.Resolve(section)
	out.Fallback = fallback
	if section.Degraded() {
		r.logger.Warn("sections.render.degraded", "key", out.Key, "type", section.Type,
			"reason", section.Data.(UnknownData).Reason)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.fail(&out, fmt.Errorf("panic: %v", recovered))
		}
	}()

	html, err := handler(ctx, section)
	if err != nil {
		r.fail(&out, err)
		return out
	}
	out.HTML = html
	return out
}

// Render renders every section in order.
func (r *Renderer) Render(ctx context.Context, list []Section) []Rendered {
	out := make([]Rendered, 0, len(list))
	for i, section := range list {
		out = append(out, r.RenderSection(ctx, i, section))
	}
	return out
}

// RenderHTML concatenates the rendered sections, each wrapped with its key.
func (r *Renderer) RenderHTML(ctx context.Context, list []Section) template.HTML {
	var buf bytes.Buffer
	for _, item := range r.Render(ctx, list) {
		if item.HTML == "" {
			continue
		}
		fmt.Fprintf(&buf, `<div data-section-key="%s">`, template.HTMLEscapeString(item.Key))
		buf.WriteString(string(item.HTML))
		buf.WriteString("</div>\n")
	}
	return template.HTML(buf.String())
}

func (r *Renderer) fail(out *Rendered, err error) {
	r.logger.Warn("sections.render.failed", "key", out.Key, "type", out.Type, "error", err)
	out.Failed = true
	out.HTML = placeholder(out.Type)
}

func placeholder(sectionType string) template.HTML {
	var buf bytes.Buffer
	if err := placeholderTemplate.Execute(&buf, sectionType); err != nil {
		return `<div class="section-error">Component failed to render</div>`
	}
	return template.HTML(buf.String())
}
