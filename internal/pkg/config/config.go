package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Valkey        ValkeyConfig        `mapstructure:"valkey"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
	Temporal      TemporalConfig      `mapstructure:"temporal"`
	Aviationstack AviationstackConfig `mapstructure:"aviationstack"`
	Scene         SceneConfig         `mapstructure:"scene"`
	Boundaries    BoundariesConfig    `mapstructure:"boundaries"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig configures the optional Postgres flight catalog. When
// Enabled is false the built-in catalog is used.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// AviationstackConfig configures the external flight schedule fallback.
// An empty AccessKey disables it.
type AviationstackConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AccessKey string `mapstructure:"access_key"`
	Timeout   int    `mapstructure:"timeout"`
}

func (a AviationstackConfig) Enabled() bool { return a.AccessKey != "" }

type SceneConfig struct {
	BaseRadius  float64 `mapstructure:"base_radius"`
	ArcSegments int     `mapstructure:"arc_segments"`
}

// BoundariesConfig locates the country-border dataset. Sources are tried
// cache first, then Path, then URL.
type BoundariesConfig struct {
	URL             string        `mapstructure:"url"`
	Path            string        `mapstructure:"path"`
	CacheKey        string        `mapstructure:"cache_key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "flightglobe")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "flightglobe")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "flightglobe-boundaries")
	v.SetDefault("aviationstack.base_url", "http://api.aviationstack.com/v1")
	v.SetDefault("aviationstack.access_key", "")
	v.SetDefault("aviationstack.timeout", 5)
	v.SetDefault("scene.base_radius", 1.5)
	v.SetDefault("scene.arc_segments", 50)
	v.SetDefault("boundaries.url", "")
	v.SetDefault("boundaries.path", "data/countries.geojson")
	v.SetDefault("boundaries.cache_key", "boundaries:countries")
	v.SetDefault("boundaries.refresh_interval", "24h")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FLIGHTGLOBE_AVIATIONSTACK_ACCESS_KEY → aviationstack.access_key
	v.SetEnvPrefix("FLIGHTGLOBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Aviationstack.Enabled() && c.Aviationstack.BaseURL == "" {
		errs = append(errs, "aviationstack.base_url is required when an access key is set")
	}
	if c.Scene.BaseRadius <= 0 {
		errs = append(errs, fmt.Sprintf("scene.base_radius must be positive, got %v", c.Scene.BaseRadius))
	}
	if c.Scene.ArcSegments < 1 {
		errs = append(errs, fmt.Sprintf("scene.arc_segments must be at least 1, got %d", c.Scene.ArcSegments))
	}
	if c.Boundaries.RefreshInterval < 0 {
		errs = append(errs, "boundaries.refresh_interval must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
