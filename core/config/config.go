package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/carboneio/sclone/core/database"
	"github.com/carboneio/sclone/core/logger"
	"github.com/carboneio/sclone/core/server"
	"github.com/carboneio/sclone/core/storage"
	"github.com/carboneio/sclone/feature/pairsync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the reconciliation and transfer settings of the pair.
	Sync pairsync.Config `mapstructure:"sync"`
	// Source is the storage the pair reads from first.
	Source storage.Config `mapstructure:"source"`
	// Target is the storage mirrored from the source.
	Target storage.Config `mapstructure:"target"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Server holds configuration for the HTTP status API.
	Server server.Config `mapstructure:"server"`
	// Database holds configuration for the optional database connection.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from a .env file, an optional config file
// and environment variables, in increasing order of precedence.
//
// path is either a config file or a directory searched for .env and
// config.{yaml,json,toml}.
func LoadConfig(path string) (*Config, error) {
	dir, file, err := resolve(path)
	if err != nil {
		return nil, err
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_MODE -> sync.mode)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// resolve splits path into the directory holding .env and an explicit
// config file, if path names one.
func resolve(path string) (string, string, error) {
	if path == "" {
		return ".", "", nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", fmt.Errorf("config path %s does not exist", path)
	}
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return path, "", nil
	}
	return filepath.Dir(path), path, nil
}

// Validate checks the settings needed before any I/O.
func (c *Config) Validate() error {
	if err := c.Sync.Validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if c.Sync.CacheDriver == pairsync.CacheDriverDatabase && !c.Database.Enabled {
		return errors.New("sync: cache_driver database requires database.enabled")
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
