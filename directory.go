package directory

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/di"
	directoryhttp "github.com/goliatone/go-directory/internal/http"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/migrations"
	"github.com/goliatone/go-directory/internal/sections"
)

// LocationService exports the location hierarchy contract.
type LocationService = locations.Service

// ContentService exports the content resolution contract.
type ContentService = content.Service

type (
	Location       = locations.Node
	LocationType   = locations.Type
	TreeNode       = locations.TreeNode
	Dataset        = locations.Dataset
	ImportResult   = locations.ImportResult
	Record         = content.Record
	SaveRequest    = content.SaveRequest
	LoadResult     = content.LoadResult
	RelocateResult = content.RelocateResult
	Section        = sections.Section
	SectionHandler = sections.Handler
)

// ErrNoDatabase is returned by Migrate when the module runs on in-memory storage.
var ErrNoDatabase = errors.New("directory: no database configured")

// DefaultMigrationsDir is the directory of the embedded SQL migrations.
const DefaultMigrationsDir = "data/sql/migrations"

// Module represents the top level directory runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a directory module using the provided configuration and
// optional DI overrides. The embedded migrations are wired by default.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	all := append([]di.Option{di.WithMigrations(GetMigrationsFS(), DefaultMigrationsDir)}, opts...)
	container, err := di.NewContainer(ctx, cfg, all...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Locations returns the location hierarchy service.
func (m *Module) Locations() LocationService {
	return m.container.LocationService()
}

// Content returns the content resolution service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// RegisterSection adds or replaces the renderer for a section type.
func (m *Module) RegisterSection(sectionType string, handler SectionHandler) error {
	return m.container.SectionRegistry().Register(sectionType, handler)
}

// Migrate applies pending migrations and refreshes the schema probe.
func (m *Module) Migrate(ctx context.Context) ([]string, error) {
	runner := m.container.Migrations()
	if runner == nil {
		return nil, ErrNoDatabase
	}
	ran, err := runner.Up(ctx)
	if err != nil {
		return ran, err
	}
	return ran, m.container.RefreshCapabilities(ctx)
}

// Migrations returns the migrations runner, nil on in-memory storage.
func (m *Module) Migrations() *migrations.Runner {
	return m.container.Migrations()
}

// Handler returns the HTTP handler serving the editor API under the
// configured base path and the public pages.
func (m *Module) Handler() (http.Handler, error) {
	api := directoryhttp.NewAPI(
		directoryhttp.WithBasePath(m.container.Config.HTTP.BasePath),
		directoryhttp.WithLocationService(m.container.LocationService()),
		directoryhttp.WithContentService(m.container.ContentService()),
		directoryhttp.WithRenderer(m.container.Renderer()),
		directoryhttp.WithLogger(logging.HTTPLogger(m.container.LoggerProvider())),
	)
	return api.Handler()
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
