package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	directory "github.com/goliatone/go-directory"
)

const envPrefix = "DIRECTORY"

// loadConfig layers the config file and DIRECTORY_* environment variables over
// the module defaults. A missing file is only an error when path is explicit.
func loadConfig(path string) (directory.Config, error) {
	cfg := directory.DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("directory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, cfg directory.Config) {
	v.SetDefault("locations.namespace", cfg.Locations.Namespace)
	v.SetDefault("locations.default_country", cfg.Locations.DefaultCountry)
	v.SetDefault("storage.provider", cfg.Storage.Provider)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.default_ttl", cfg.Cache.DefaultTTL)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)
	v.SetDefault("features.logger", cfg.Features.Logger)
	v.SetDefault("features.schema_probe", cfg.Features.SchemaProbe)
	v.SetDefault("features.cache", cfg.Features.Cache)
	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
