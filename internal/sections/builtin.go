package sections

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

const builtinTemplates = `
{{define "hero"}}<section class="section section-hero">
{{- with .Heading}}<h1>{{.}}</h1>{{end}}
{{- with .Subheading}}<p class="lead">{{.}}</p>{{end}}
{{- with .Image}}<img src="{{.}}" alt="">{{end}}
{{- with .CTA}}{{template "link" .}}{{end -}}
</section>{{end}}

{{define "link"}}{{if .Href}}<a class="cta" href="{{.Href}}">{{or .Label .Href}}</a>{{end}}{{end}}

{{define "overview"}}<section class="section section-overview">
{{- with .Title}}<h2>{{.}}</h2>{{end}}
{{- with .Body}}<div class="prose">{{.}}</div>{{end -}}
</section>{{end}}

{{define "system"}}<section class="section section-system">
{{- with .Title}}<h2>{{.}}</h2>{{end}}
{{- with .Description}}<p>{{.}}</p>{{end}}
{{- with .Steps}}<ol>{{range .}}<li><h3>{{.Title}}</h3>{{with .Description}}<p>{{.}}</p>{{end}}</li>{{end}}</ol>{{end -}}
</section>{{end}}

{{define "reasons"}}<section class="section section-reasons">
{{- with .Title}}<h2>{{.}}</h2>{{end}}
{{- with .Items}}<ul>{{range .}}<li><strong>{{.Title}}</strong>{{with .Description}} {{.}}{{end}}</li>{{end}}</ul>{{end -}}
</section>{{end}}

{{define "featuredAreas"}}<section class="section section-featured-areas">
{{- with .Title}}<h2>{{.}}</h2>{{end}}
{{- with .Areas}}<ul>{{range .}}<li>{{if .Href}}<a href="{{.Href}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</li>{{end}}</ul>{{end -}}
</section>{{end}}

{{define "faqs"}}<section class="section section-faqs">
{{- with .Title}}<h2>{{.}}</h2>{{end}}
{{- with .Items}}<dl>{{range .}}<dt>{{.Question}}</dt><dd>{{.Answer}}</dd>{{end}}</dl>{{end -}}
</section>{{end}}

{{define "trustbar"}}<section class="section section-trustbar">
{{- with .Items}}<ul>{{range .}}<li><span class="value">{{.Value}}</span> <span class="label">{{.Label}}</span></li>{{end}}</ul>{{end -}}
</section>{{end}}

{{define "finalcta"}}<section class="section section-final-cta">
{{- with .Heading}}<h2>{{.}}</h2>{{end}}
{{- with .Body}}<p>{{.}}</p>{{end}}
{{- with .CTA}}{{template "link" .}}{{end -}}
</section>{{end}}
`

var builtins = template.Must(template.New("sections").Parse(builtinTemplates))

type overviewView struct {
	Title string
	Body  template.HTML
}

func builtinHandlers(md *Markdown) map[string]Handler {
	if md == nil {
		md = NewMarkdown()
	}
	handlers := map[string]Handler{}
	for _, sectionType := range KnownTypes {
		handlers[sectionType] = templateHandler(sectionType)
	}
	handlers[TypeOverview] = func(ctx context.Context, section Section) (template.HTML, error) {
		data, ok := section.Data.(OverviewData)
		if !ok {
			return GenericFallback(ctx, section)
		}
		body, err := md.Render(data.Body)
		if err != nil {
			return "", err
		}
		return execute(TypeOverview, overviewView{Title: data.Title, Body: body})
	}
	return handlers
}

func templateHandler(name string) Handler {
	return func(ctx context.Context, section Section) (template.HTML, error) {
		if section.Data == nil || section.Data.sectionType() != name {
			return GenericFallback(ctx, section)
		}
		return execute(name, section.Data)
	}
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := builtins.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("sections: render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
