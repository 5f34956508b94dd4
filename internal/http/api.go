package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/sections"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

// API registers the editor and public endpoints of the directory.
type API struct {
	basePath  string
	locations locations.Service
	content   content.Service
	renderer  *sections.Renderer
	logger    interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.renderer == nil {
		api.renderer = sections.NewRenderer(sections.NewDefaultRegistry(sections.NewMarkdown()))
	}
	return api
}

// WithBasePath prefixes the editor routes. Public pages are not prefixed.
func WithBasePath(path string) Option {
	return func(api *API) {
		if api != nil {
			api.basePath = strings.TrimSpace(path)
		}
	}
}

// WithLocationService wires the location hierarchy.
func WithLocationService(service locations.Service) Option {
	return func(api *API) {
		if api != nil {
			api.locations = service
		}
	}
}

// WithContentService wires the content resolution service.
func WithContentService(service content.Service) Option {
	return func(api *API) {
		if api != nil {
			api.content = service
		}
	}
}

// WithRenderer sets the section renderer used by public pages.
func WithRenderer(renderer *sections.Renderer) Option {
	return func(api *API) {
		if api != nil {
			api.renderer = renderer
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if api != nil {
			api.logger = logging.Ensure(logger)
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}
	if api.locations == nil || api.content == nil {
		return fmt.Errorf("http: location and content services are required")
	}

	base := joinPath(api.basePath, "")
	api.registerLocationRoutes(mux, base)
	api.registerContentRoutes(mux, base)
	api.registerPublicRoutes(mux)
	return nil
}

// Handler returns a mux with every route registered.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}
