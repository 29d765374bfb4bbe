// Package config centralizes how rreport reads its settings and exposes them
// as strongly typed Go values. Values come from defaults, an optional
// rreport.yaml file and RREPORT_* environment variables, in increasing order
// of precedence. The resulting *Config is passed explicitly to every
// component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents runtime configuration for the library, the CLI and the
// render services.
type Config struct {
	// Core
	TempDirectory  string `mapstructure:"temp_directory"`
	CacheResources bool   `mapstructure:"cache_resources"`
	// ResourceDirectory is the only place the render services embed report
	// resources from. Empty disables resources for them.
	ResourceDirectory string `mapstructure:"resource_directory"`

	// Executors
	APIEndpoint string        `mapstructure:"api_endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout"`
	JavaPath    string        `mapstructure:"java_path"`
	JarPath     string        `mapstructure:"jar_path"`
	Verbose     bool          `mapstructure:"verbose"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"env"`

	// Render service
	Address       string        `mapstructure:"address"`
	DatabaseURL   string        `mapstructure:"database_url"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	S3Endpoint    string        `mapstructure:"s3_endpoint"`
	S3AccessKey   string        `mapstructure:"s3_access_key"`
	S3SecretKey   string        `mapstructure:"s3_secret_key"`
	S3UseSSL      bool          `mapstructure:"s3_use_ssl"`
	S3Region      string        `mapstructure:"s3_region"`
	ReportBucket  string        `mapstructure:"report_bucket"`
	Workers       int           `mapstructure:"workers"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
}

const (
	// EnvPrefix is prepended to every environment override, e.g.
	// RREPORT_TEMP_DIRECTORY.
	EnvPrefix = "RREPORT"
	// FileName is the base name searched for when no explicit path is given.
	FileName = "rreport"

	defaultAddress      = ":8080"
	defaultAPITimeout   = 2 * time.Minute
	defaultJavaPath     = "java"
	defaultLogLevel     = "info"
	defaultEnv          = "development"
	defaultRedisAddr    = "localhost:6379"
	defaultS3Endpoint   = "localhost:9000"
	defaultS3Region     = "us-east-1"
	defaultReportBucket = "rreport-output"
	defaultWorkerCount  = 2
	defaultPresignTTL   = 15 * time.Minute
	defaultMaxBodyBytes = 4 << 20 // 4 MiB
)

// CacheDirectory is where the resource cache keeps its artifacts.
func (c *Config) CacheDirectory() string {
	return filepath.Join(c.TempDirectory, "rreport-cache")
}

// Load reads configuration. When path is empty the working directory and
// $HOME/.rreport are searched for rreport.yaml and a missing file is not an
// error; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".rreport"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are all plain scalars; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	normalize(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("temp_directory", os.TempDir())
	v.SetDefault("cache_resources", true)
	v.SetDefault("resource_directory", "")
	v.SetDefault("api_endpoint", "")
	v.SetDefault("api_timeout", defaultAPITimeout)
	v.SetDefault("java_path", defaultJavaPath)
	v.SetDefault("jar_path", "")
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("env", defaultEnv)
	v.SetDefault("address", defaultAddress)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", defaultRedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("s3_endpoint", defaultS3Endpoint)
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_use_ssl", false)
	v.SetDefault("s3_region", defaultS3Region)
	v.SetDefault("report_bucket", defaultReportBucket)
	v.SetDefault("workers", defaultWorkerCount)
	v.SetDefault("presign_ttl", defaultPresignTTL)
	v.SetDefault("max_body_bytes", defaultMaxBodyBytes)
}

// normalize replaces nonsensical values with defaults instead of failing.
func normalize(cfg *Config) {
	if strings.TrimSpace(cfg.TempDirectory) == "" {
		cfg.TempDirectory = os.TempDir()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = defaultAPITimeout
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.JavaPath == "" {
		cfg.JavaPath = defaultJavaPath
	}
}
