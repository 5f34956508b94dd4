package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.Trim(strings.TrimSpace(base), "/")
	trimmedSuffix := strings.Trim(strings.TrimSpace(suffix), "/")
	switch {
	case trimmedBase == "" && trimmedSuffix == "":
		return ""
	case trimmedBase == "":
		return "/" + trimmedSuffix
	case trimmedSuffix == "":
		return "/" + trimmedBase
	}
	return "/" + trimmedBase + "/" + trimmedSuffix
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Code: "bad_request"})
}

func (api *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.Error("http.request.failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

// mapError keeps storage faults at 500. Only client input, unknown ids on
// editor routes, unresolvable canonical slugs and relocation conflicts map to 4xx.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown error", Code: "unknown_error"}
	}

	if errors.Is(err, content.ErrLocationIDRequired) ||
		errors.Is(err, locations.ErrIDRequired) ||
		errors.Is(err, locations.ErrSlugInvalid) ||
		goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"}
	}

	if locations.IsNotFound(err) {
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"}
	}

	if errors.Is(err, content.ErrRelocationConflict) ||
		errors.Is(err, content.ErrCanonicalSlugTaken) ||
		errors.Is(err, locations.ErrSlugTaken) ||
		errors.Is(err, locations.ErrCanonicalTaken) {
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"}
	}

	if errors.Is(err, content.ErrCanonicalUnresolved) {
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "canonical_unresolved"}
	}

	if errors.Is(err, content.ErrRelocatorUnavailable) || errors.Is(err, locations.ErrColumnUnavailable) {
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "service_unavailable"}
	}

	return http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "internal_error"}
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
