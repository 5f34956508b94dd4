package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
)

type relocatePayload struct {
	Slug string `json:"slug"`
}

type treeResponse struct {
	Success   bool                  `json:"success"`
	Locations []*locations.TreeNode `json:"locations"`
}

type relocateResponse struct {
	Success  bool            `json:"success"`
	Location *locations.Node `json:"location"`
	Moves    []content.Move  `json:"moves"`
}

func (api *API) registerLocationRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "locations")
	mux.HandleFunc("GET "+root, api.handleLocationTree)
	mux.HandleFunc("PATCH "+root+"/{id}", api.handleLocationRelocate)
}

func (api *API) handleLocationTree(w http.ResponseWriter, r *http.Request) {
	tree, err := api.locations.Tree(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if tree == nil {
		tree = []*locations.TreeNode{}
	}
	writeJSON(w, http.StatusOK, treeResponse{Success: true, Locations: tree})
}

func (api *API) handleLocationRelocate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == "" {
		writeBadRequest(w, "location id required")
		return
	}
	var payload relocatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json body: "+err.Error())
		return
	}
	if strings.TrimSpace(payload.Slug) == "" {
		writeBadRequest(w, "slug required")
		return
	}

	result, err := api.content.Relocate(r.Context(), id, payload.Slug)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, relocateResponse{Success: true, Location: result.Location, Moves: result.Moves})
}
