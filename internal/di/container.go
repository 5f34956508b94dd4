package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/logging/console"
	"github.com/goliatone/go-directory/internal/logging/gologger"
	"github.com/goliatone/go-directory/internal/migrations"
	"github.com/goliatone/go-directory/internal/runtimeconfig"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/internal/sections"
	"github.com/goliatone/go-directory/pkg/interfaces"
	"github.com/goliatone/go-directory/pkg/storage"
)

// Container wires module dependencies. Without a database every repository
// is in-memory.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	caps          schemacaps.Capabilities
	tracker       *schemacaps.Tracker
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	migrationsFS  fs.FS
	migrationsDir string

	locationRepo    locations.Repository
	memoryLocations *locations.MemoryRepository
	recordRepo      content.Repository
	bunRecords      *content.BunRepository
	relocator       content.Relocator

	locationSvc locations.Service
	contentSvc  content.Service
	markdown    *sections.Markdown
	registry    *sections.Registry
	renderer    *sections.Renderer
	backfill    *migrations.Backfill
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCapabilities skips the schema probe and uses caps instead.
func WithCapabilities(caps schemacaps.Capabilities) Option {
	return func(c *Container) {
		c.caps = caps
	}
}

// WithMigrations sets where the base schema SQL files are read from.
func WithMigrations(fsys fs.FS, dir string) Option {
	return func(c *Container) {
		c.migrationsFS = fsys
		c.migrationsDir = strings.Trim(strings.TrimSpace(dir), "/")
	}
}

// WithLocationRepository overrides the location repository.
func WithLocationRepository(repo locations.Repository) Option {
	return func(c *Container) {
		c.locationRepo = repo
	}
}

// WithRecordRepository overrides the content record repository.
func WithRecordRepository(repo content.Repository) Option {
	return func(c *Container) {
		c.recordRepo = repo
	}
}

// WithRelocator overrides the relocator used for slug edits.
func WithRelocator(relocator content.Relocator) Option {
	return func(c *Container) {
		c.relocator = relocator
	}
}

// NewContainer validates cfg and builds the services. It opens the
// configured database unless one is supplied through WithBunDB, and probes
// its schema when the schema probe feature is on.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:        cfg,
		cacheTTL:      cacheTTL,
		migrationsDir: "data/sql/migrations",
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.configureCapabilities(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()

	logging.ModuleLogger(c.loggerProvider, "directory").Info("directory.container.ready",
		"storage", c.storageProvider(),
		"cache", c.cacheService != nil,
		"namespace", c.locationSvc.Deriver().Prefix(),
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil {
		return nil
	}
	storageCfg := storage.Config{Provider: c.Config.Storage.Provider, DSN: c.Config.Storage.DSN}
	if strings.EqualFold(strings.TrimSpace(storageCfg.Provider), storage.ProviderSQLite) {
		storageCfg.MaxOpenConns = 1
	}
	db, err := storage.Open(ctx, storageCfg)
	if errors.Is(err, storage.ErrNoDatabase) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("directory storage: %w", err)
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCapabilities(ctx context.Context) error {
	if c.bunDB == nil || c.caps != nil {
		return nil
	}
	if !c.Config.Features.SchemaProbe {
		c.caps = schemacaps.All()
		return nil
	}
	tracker := schemacaps.NewTracker(c.bunDB)
	if err := tracker.Probe(ctx); err != nil {
		return fmt.Errorf("directory schema probe: %w", err)
	}
	c.tracker = tracker
	c.caps = tracker
	logging.MigrationsLogger(c.loggerProvider).Debug("schemacaps.probed", "columns", tracker.Snapshot())
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			logging.ContentLogger(c.loggerProvider).Warn("content.cache.unavailable", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		if c.locationRepo == nil {
			c.memoryLocations = locations.NewMemoryRepository()
			c.locationRepo = c.memoryLocations
		}
		if c.recordRepo == nil {
			memoryRecords := content.NewMemoryRepository()
			c.recordRepo = memoryRecords
			if c.relocator == nil && c.memoryLocations != nil {
				c.relocator = content.NewMemoryRelocator(c.memoryLocations, memoryRecords)
			}
		}
		return
	}

	if c.locationRepo == nil {
		c.locationRepo = locations.NewBunRepository(c.bunDB, c.caps,
			locations.WithBunLogger(logging.LocationsLogger(c.loggerProvider)))
	}
	if c.recordRepo == nil {
		c.bunRecords = content.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer,
			content.WithBunLogger(logging.ContentLogger(c.loggerProvider)),
			content.WithBunCapabilities(c.caps),
		)
		c.recordRepo = c.bunRecords
	}
	if c.relocator == nil {
		relocatorOpts := []content.RelocatorOption{
			content.WithRelocatorLogger(logging.ContentLogger(c.loggerProvider)),
			content.WithRelocatorCapabilities(c.caps),
		}
		if c.bunRecords != nil {
			relocatorOpts = append(relocatorOpts, content.WithCacheInvalidation(c.bunRecords.InvalidateCache))
		}
		c.relocator = content.NewBunRelocator(c.bunDB, relocatorOpts...)
	}
}

func (c *Container) configureServices() {
	deriver := locations.NewDeriver(c.Config.Locations.Namespace)
	c.locationSvc = locations.NewService(c.locationRepo, deriver,
		locations.WithLogger(logging.LocationsLogger(c.loggerProvider)))

	contentOpts := []content.ServiceOption{
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
		content.WithDefaultCountry(c.Config.Locations.DefaultCountry),
	}
	if c.relocator != nil {
		contentOpts = append(contentOpts, content.WithRelocator(c.relocator))
	}
	c.contentSvc = content.NewService(c.locationSvc, c.recordRepo, contentOpts...)

	c.markdown = sections.NewMarkdown()
	c.registry = sections.NewDefaultRegistry(c.markdown)
	c.renderer = sections.NewRenderer(c.registry,
		sections.WithRendererLogger(logging.SectionsLogger(c.loggerProvider)))

	if c.bunDB != nil {
		c.backfill = migrations.NewBackfill(c.bunDB, deriver,
			migrations.WithBackfillLogger(logging.MigrationsLogger(c.loggerProvider)))
	}
}

func (c *Container) storageProvider() string {
	if c.bunDB == nil {
		return runtimeconfig.StorageMemory
	}
	return strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
}

// LoggerProvider exposes the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module-scoped logger.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// DB returns the database handle, nil for in-memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

func (c *Container) Capabilities() schemacaps.Capabilities {
	return c.caps
}

func (c *Container) LocationService() locations.Service {
	return c.locationSvc
}

func (c *Container) ContentService() content.Service {
	return c.contentSvc
}

// SectionRegistry returns the registry public pages render through. Hosts
// may register additional section handlers on it.
func (c *Container) SectionRegistry() *sections.Registry {
	return c.registry
}

func (c *Container) Renderer() *sections.Renderer {
	return c.renderer
}

// Backfill returns the canonical slug backfill, nil without a database.
func (c *Container) Backfill() *migrations.Backfill {
	return c.backfill
}

// Migrations returns a runner over the directory migrations, or nil when
// there is no database or no migration source.
func (c *Container) Migrations() *migrations.Runner {
	if c.bunDB == nil || c.migrationsFS == nil {
		return nil
	}
	return migrations.NewRunner(c.bunDB,
		migrations.Default(c.migrationsFS, c.migrationsDir, c.backfill),
		migrations.WithLogger(logging.MigrationsLogger(c.loggerProvider)),
	)
}

// RefreshCapabilities re-probes the schema, e.g. after migrations ran.
func (c *Container) RefreshCapabilities(ctx context.Context) error {
	if c.tracker == nil {
		return nil
	}
	return c.tracker.Refresh(ctx)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}
