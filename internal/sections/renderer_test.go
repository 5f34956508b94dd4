package sections

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"
)

func TestDispatchUnknownTypeWithFields(t *testing.T) {
	r := NewRenderer(NewDefaultRegistry(nil))
	s := Section{Type: "testimonial", Key: "t", Data: UnknownData{Raw: []byte(`{"heading":"Kind words","content":{"stars":5}}`)}}

	out := r.RenderSection(context.Background(), 0, s)
	if out.Failed || !out.Fallback {
		t.Fatalf("expected fallback render, got %+v", out)
	}
	html := string(out.HTML)
	if !strings.Contains(html, "<h2>Kind words</h2>") {
		t.Fatalf("expected heading, got %s", html)
	}
	if !strings.Contains(html, "{&#34;stars&#34;:5}") {
		t.Fatalf("expected stringified content, got %s", html)
	}
}

func TestDispatchUnknownTypeWithoutFields(t *testing.T) {
	r := NewRenderer(NewDefaultRegistry(nil))
	inputs := []Section{
		{Type: "mystery", Data: UnknownData{Raw: []byte(`{"foo":1}`)}},
		{Type: "mystery", Data: UnknownData{Raw: []byte(`[1,2,3]`)}},
		{Type: "", Data: nil},
		{Type: "mystery", Data: UnknownData{Raw: []byte(`{"title":null}`)}},
	}
	for i, s := range inputs {
		out := r.RenderSection(context.Background(), i, s)
		if out.Failed {
			t.Fatalf("input %d: fallback must never fail", i)
		}
		if out.HTML != "" {
			t.Fatalf("input %d: expected empty output, got %s", i, out.HTML)
		}
	}
}

func TestDegradedKnownTypeUsesFallback(t *testing.T) {
	r := NewRenderer(NewDefaultRegistry(nil))
	s := Section{Key: "hero", Type: TypeHero, Data: DecodeData(TypeHero, []byte(`{"title":"Old shape"}`))}
	if !s.Degraded() {
		t.Fatalf("expected degraded hero")
	}
	out := r.RenderSection(context.Background(), 0, s)
	if !out.Fallback || !strings.Contains(string(out.HTML), "Old shape") {
		t.Fatalf("expected fallback render of title, got %+v", out)
	}
}

func TestFaultIsolationPerSection(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("boom", func(context.Context, Section) (template.HTML, error) {
		return "", errors.New("bad data")
	})
	_ = registry.Register("panic", func(context.Context, Section) (template.HTML, error) {
		panic("nil map")
	})
	_ = registry.Register("ok", func(context.Context, Section) (template.HTML, error) {
		return "<p>fine</p>", nil
	})
	r := NewRenderer(registry)

	out := r.Render(context.Background(), []Section{
		{Type: "boom", Data: HeroData{}},
		{Type: "panic", Data: HeroData{}},
		{Type: "ok", Data: HeroData{}},
	})
	if len(out) != 3 {
		t.Fatalf("expected three outputs, got %d", len(out))
	}
	for i, item := range out[:2] {
		if !item.Failed || !strings.Contains(string(item.HTML), "Component failed to render") {
			t.Fatalf("section %d: expected placeholder, got %+v", i, item)
		}
	}
	if !strings.Contains(string(out[0].HTML), `data-section-type="boom"`) {
		t.Fatalf("expected placeholder to name the type, got %s", out[0].HTML)
	}
	if out[2].Failed || out[2].HTML != "<p>fine</p>" {
		t.Fatalf("expected healthy section to render, got %+v", out[2])
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()
	handler := func(context.Context, Section) (template.HTML, error) { return "", nil }
	if err := registry.Register(" ", handler); !errors.Is(err, ErrHandlerTypeRequired) {
		t.Fatalf("expected ErrHandlerTypeRequired, got %v", err)
	}
	if err := registry.Register("x", nil); !errors.Is(err, ErrHandlerNil) {
		t.Fatalf("expected ErrHandlerNil, got %v", err)
	}
	if err := registry.Register("x", handler); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register("x", handler); !errors.Is(err, ErrHandlerExists) {
		t.Fatalf("expected ErrHandlerExists, got %v", err)
	}
}

func TestBuiltinsRenderScaffold(t *testing.T) {
	r := NewRenderer(NewDefaultRegistry(NewMarkdown()))
	list := Scaffold(TemplateCountry, "England")
	list[1].Data = OverviewData{Title: "About", Body: "Fostering in **England**.\n\n<script>alert(1)</script>"}

	html := string(r.RenderHTML(context.Background(), list))
	if !strings.Contains(html, "<h1>Foster care in England</h1>") {
		t.Fatalf("expected hero heading, got %s", html)
	}
	if !strings.Contains(html, "<strong>England</strong>") {
		t.Fatalf("expected markdown rendered, got %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html must not pass through markdown, got %s", html)
	}
	if !strings.Contains(html, `data-section-key="overview"`) {
		t.Fatalf("expected section wrappers, got %s", html)
	}
}
