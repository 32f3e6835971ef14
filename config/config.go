// Package config loads server configuration from defaults overridden by environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverFirestore = "firestore"
	DriverMySQL     = "mysql"
	DriverMemory    = "memory"
)

type Config struct {
	Server       ServerConfig   `koanf:"server"`
	Database     DatabaseConfig `koanf:"database"`
	Storage      StorageConfig  `koanf:"storage"`
	Geocoder     GeocoderConfig `koanf:"geocoder"`
	Logging      LoggingConfig  `koanf:"logging"`
	SeedDemoData bool           `koanf:"seed_demo_data"`
}

type ServerConfig struct {
	Port    int    `koanf:"port" validate:"required,min=1,max=65535"`
	GinMode string `koanf:"gin_mode" validate:"omitempty,oneof=debug release test"`
	// FrontendOrigins is a ';' separated list of CORS origins.
	FrontendOrigins string `koanf:"frontend_origins"`
	// LocationCacheInterval is how often the cached location list is rebuilt.
	LocationCacheInterval time.Duration `koanf:"location_cache_interval" validate:"min=1s"`
}

func (sc *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(sc.FrontendOrigins, ";") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=firestore mysql memory"`
	User         string `koanf:"user" validate:"required_if=Driver mysql"`
	Password     string `koanf:"password"`
	Host         string `koanf:"host" validate:"required_if=Driver mysql"`
	Name         string `koanf:"name" validate:"required_if=Driver mysql"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=1"`
}

type StorageConfig struct {
	Bucket        string        `koanf:"bucket"`
	UploadTimeout time.Duration `koanf:"upload_timeout" validate:"min=1s"`
}

type GeocoderConfig struct {
	URL               string        `koanf:"url" validate:"required,url"`
	UserAgent         string        `koanf:"user_agent" validate:"required"`
	Timeout           time.Duration `koanf:"timeout" validate:"min=1s"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  8080,
			GinMode:               "release",
			FrontendOrigins:       "http://localhost:3000",
			LocationCacheInterval: 20 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver:       DriverFirestore,
			Name:         "groundsync",
			MaxOpenConns: 50,
		},
		Storage: StorageConfig{
			UploadTimeout: 15 * time.Second,
		},
		Geocoder: GeocoderConfig{
			URL:       "https://nominatim.openstreetmap.org",
			UserAgent: "GroundSync/1.0",
			Timeout:   10 * time.Second,
			// Nominatim usage policy: at most one request per second.
			RequestsPerSecond: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var envMappings = map[string]string{
	"port":                    "server.port",
	"gin_mode":                "server.gin_mode",
	"fe_origins":              "server.frontend_origins",
	"location_cache_interval": "server.location_cache_interval",
	"db_driver":               "database.driver",
	"db_user":                 "database.user",
	"db_pass":                 "database.password",
	"db_host":                 "database.host",
	"db_name":                 "database.name",
	"db_max_open_conns":       "database.max_open_conns",
	"storage_bucket":          "storage.bucket",
	"upload_timeout":          "storage.upload_timeout",
	"geocoder_url":            "geocoder.url",
	"geocoder_user_agent":     "geocoder.user_agent",
	"geocoder_timeout":        "geocoder.timeout",
	"geocoder_rps":            "geocoder.requests_per_second",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"seed_demo_data":          "seed_demo_data",
}

// envTransformFunc maps known environment variables onto koanf paths and drops the rest.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// MediaEnabled reports whether discussion media can be stored. The firestore driver always has a
// bucket; the mysql and memory drivers run without one and reject media uploads.
func (c *Config) MediaEnabled() bool {
	return c.Storage.Bucket != ""
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	if c.Database.Driver == DriverFirestore && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket (STORAGE_BUCKET) is required with the %v driver", DriverFirestore)
	}
	return nil
}
