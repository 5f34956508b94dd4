package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/sections"
)

type contentPayload struct {
	Title    string             `json:"title"`
	Slug     string             `json:"slug"`
	Type     string             `json:"type"`
	Country  string             `json:"country"`
	Region   string             `json:"region"`
	Editable *bool              `json:"editable,omitempty"`
	Hero     json.RawMessage    `json:"hero,omitempty"`
	Sections []sections.Section `json:"sections,omitempty"`
}

func (p contentPayload) request() content.SaveRequest {
	return content.SaveRequest{
		Title:    p.Title,
		Slug:     p.Slug,
		Type:     p.Type,
		Country:  p.Country,
		Region:   p.Region,
		Editable: p.Editable,
		Hero:     p.Hero,
		Sections: p.Sections,
	}
}

type saveResponse struct {
	Success bool            `json:"success"`
	Saved   *content.Record `json:"saved"`
}

// contentResponse carries nulls, not a 404, when nothing is stored yet.
type contentResponse struct {
	Success       bool               `json:"success"`
	Content       *sections.Document `json:"content"`
	TemplateType  *string            `json:"template_type"`
	CanonicalSlug *string            `json:"canonical_slug"`
	UpdatedAt     *time.Time         `json:"updated_at"`
}

func (api *API) registerContentRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "locations")
	mux.HandleFunc("GET "+root+"/{id}/content", api.handleContentGet)
	mux.HandleFunc("PUT "+root+"/{id}/content", api.handleContentSave)
}

func (api *API) handleContentSave(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == "" {
		writeBadRequest(w, "location id required")
		return
	}
	var payload contentPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json body: "+err.Error())
		return
	}

	record, err := api.content.Save(r.Context(), id, payload.request())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Success: true, Saved: record})
}

func (api *API) handleContentGet(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == "" {
		writeBadRequest(w, "location id required")
		return
	}
	result, err := api.content.Load(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	resp := contentResponse{Success: true, CanonicalSlug: nullable(result.CanonicalSlug)}
	if record := result.Record; record != nil {
		doc := record.Content
		updated := record.UpdatedAt
		resp.Content = &doc
		resp.TemplateType = record.TemplateType
		resp.UpdatedAt = &updated
	}
	writeJSON(w, http.StatusOK, resp)
}
