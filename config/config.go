// Package config loads the application configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file <
// environment variables. Environment variables use the PKGIDX_ prefix,
// with dots replaced by underscores (e.g. PKGIDX_DATABASE_HOST overrides
// database.host).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig holds the postgres connection configuration.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host='%s' port='%d' user='%s' password='%s' dbname='%s' sslmode='%s'",
		c.Host,
		c.Port,
		c.Username,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// StorageConfig selects and configures the upload file store.
type StorageConfig struct {
	// Type is one of "filesystem", "s3" or "memory".
	Type string `mapstructure:"type"`
	// UploadRoot is the root directory for the filesystem store.
	UploadRoot string   `mapstructure:"upload_root"`
	S3         S3Config `mapstructure:"s3"`
}

// S3Config holds S3-compatible object storage configuration.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyID     string `mapstructure:"key_id"`
	AccessKey string `mapstructure:"access_key"`
	Timeout   string `mapstructure:"timeout"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var Cfg = &AppConfig{}

// Load reads configuration into Cfg. path may be empty, in which case only
// defaults and environment variables apply; a missing config file is not an
// error.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PKGIDX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	*Cfg = *cfg

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "package_index")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.upload_root", "uploads")
	v.SetDefault("storage.s3.timeout", "30s")

	v.SetDefault("logging.level", "info")
}
