package directory

import "github.com/goliatone/go-directory/internal/runtimeconfig"

var (
	ErrNamespaceRequired       = runtimeconfig.ErrNamespaceRequired
	ErrNamespaceInvalid        = runtimeconfig.ErrNamespaceInvalid
	ErrDefaultCountryRequired  = runtimeconfig.ErrDefaultCountryRequired
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheFeatureRequired    = runtimeconfig.ErrCacheFeatureRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	LocationsConfig = runtimeconfig.LocationsConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
