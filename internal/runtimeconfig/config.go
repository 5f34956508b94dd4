package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNamespaceRequired       = errors.New("directory config: locations namespace is required")
	ErrNamespaceInvalid        = errors.New("directory config: locations namespace must be a single url segment")
	ErrDefaultCountryRequired  = errors.New("directory config: default country is required")
	ErrStorageProviderUnknown  = errors.New("directory config: storage provider is invalid")
	ErrStorageDSNRequired      = errors.New("directory config: storage dsn is required for sql providers")
	ErrCacheFeatureRequired    = errors.New("directory config: cache feature requires cache to be enabled")
	ErrCacheTTLInvalid         = errors.New("directory config: cache ttl must be positive")
	ErrLoggingProviderRequired = errors.New("directory config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("directory config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("directory config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("directory config: logging format is invalid")
)

// Config aggregates feature flags and adapter bindings for the directory runtime.
type Config struct {
	Locations LocationsConfig `mapstructure:"locations"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Features  Features        `mapstructure:"features"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// LocationsConfig controls canonical slug derivation.
type LocationsConfig struct {
	// Namespace is the leading path segment of every canonical slug.
	Namespace string `mapstructure:"namespace"`
	// DefaultCountry is used by Save-Content when the request names no country.
	DefaultCountry string `mapstructure:"default_country"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	BasePath string `mapstructure:"base_path"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger      bool `mapstructure:"logger"`
	SchemaProbe bool `mapstructure:"schema_probe"`
	Cache       bool `mapstructure:"cache"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// DefaultConfig returns the settings used when nothing is configured: in-memory
// storage, the foster-agency namespace and england as the fallback country.
func DefaultConfig() Config {
	return Config{
		Locations: LocationsConfig{
			Namespace:      "foster-agency",
			DefaultCountry: "england",
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "",
		},
		Features: Features{
			SchemaProbe: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	namespace := strings.TrimSpace(cfg.Locations.Namespace)
	if namespace == "" {
		return ErrNamespaceRequired
	}
	if strings.Contains(strings.Trim(namespace, "/"), "/") {
		return fmt.Errorf("%w: %s", ErrNamespaceInvalid, namespace)
	}
	if strings.TrimSpace(cfg.Locations.DefaultCountry) == "" {
		return ErrDefaultCountryRequired
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Features.Cache {
		if !cfg.Cache.Enabled {
			return ErrCacheFeatureRequired
		}
		if cfg.Cache.DefaultTTL <= 0 {
			return ErrCacheTTLInvalid
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !supportedLevels[level] {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := normalize(cfg.Logging.Format); format != "" && !supportedFormats[format] {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// NamespacePath returns the namespace as a rooted path, e.g. "/foster-agency".
func (cfg Config) NamespacePath() string {
	return "/" + strings.Trim(strings.TrimSpace(cfg.Locations.Namespace), "/")
}

var supportedLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true,
}

var supportedFormats = map[string]bool{"json": true, "console": true, "pretty": true}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
