package sections

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"strings"
)

var fallbackTemplate = template.Must(template.New("generic").Parse(
	`<section class="section section-generic">` +
		`{{with .Title}}<h2>{{.}}</h2>{{end}}` +
		`{{with .Body}}<div class="section-body">{{.}}</div>{{end}}` +
		`</section>`))

// GenericFallback renders any section from best-effort title/heading and
// content/description fields. Non-string content is rendered as JSON. It
// returns empty output when neither field is present and never fails.
func GenericFallback(_ context.Context, section Section) (out template.HTML, _ error) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	fields := ToMap(section.Data)
	title := firstText(fields, "title", "heading")
	body := firstText(fields, "content", "description")
	if title == "" && body == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := fallbackTemplate.Execute(&buf, struct{ Title, Body string }{title, body}); err != nil {
		return "", nil
	}
	return template.HTML(buf.String()), nil
}

func firstText(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		if text, ok := value.(string); ok {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		return string(encoded)
	}
	return ""
}
