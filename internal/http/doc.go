// Package http exposes the directory over net/http.
//
// Editor routes mount under the configured base path:
//   - Location tree: GET /locations
//   - Slug edits: PATCH /locations/{id}
//   - Location content: GET /locations/{id}/content, PUT /locations/{id}/content
//
// Public pages are served at /{namespace}/{path...}, matching the canonical
// slugs stored for each location.
//
// Host applications can register handlers on their own mux/router as needed.
package http
