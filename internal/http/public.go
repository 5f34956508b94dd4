package http

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"strings"

	"github.com/goliatone/go-directory/internal/sections"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="canonical" href="{{.Canonical}}">
</head>
<body>
{{if .Empty}}<main class="empty-state"><h1>{{.Title}}</h1><p>Content for this area is on its way.</p></main>
{{else}}<main data-template-type="{{.Template}}">
{{.Body}}</main>
{{end}}</body>
</html>
`))

type pageView struct {
	Title     string
	Canonical string
	Template  string
	Empty     bool
	Body      template.HTML
}

func (api *API) registerPublicRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	prefix := api.locations.Deriver().Prefix()
	mux.HandleFunc("GET "+prefix+"/{path...}", api.handlePublicPage)
}

func (api *API) handlePublicPage(w http.ResponseWriter, r *http.Request) {
	prefix := api.locations.Deriver().Prefix()
	canonical := strings.TrimRight(path.Join(prefix, r.PathValue("path")), "/")

	result, err := api.content.LoadByCanonical(r.Context(), canonical)
	if err != nil {
		api.logger.Error("http.public.load_failed", "canonical_slug", canonical, "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	view := pageView{Title: pageTitle(canonical, nil), Canonical: canonical, Empty: result.Empty()}
	if record := result.Record; record != nil {
		view.Title = pageTitle(canonical, record.Content.Sections)
		view.Template = record.Template()
		view.Body = api.renderer.RenderHTML(r.Context(), record.Content.Sections)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		api.logger.Error("http.public.render_failed", "canonical_slug", canonical, "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// pageTitle prefers the hero heading, then the last canonical segment.
func pageTitle(canonical string, list []sections.Section) string {
	for _, section := range list {
		if hero, ok := section.Data.(sections.HeroData); ok && strings.TrimSpace(hero.Heading) != "" {
			return hero.Heading
		}
	}
	segment := path.Base(canonical)
	if segment == "" || segment == "/" || segment == "." {
		return "Foster care"
	}
	return strings.ReplaceAll(segment, "-", " ")
}
