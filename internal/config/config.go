package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	App         AppConfig
	Auth        AuthConfig
	Cache       CacheConfig
	InventoryDB InventoryDBConfig
	MySQL       MySQLConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"filament-inventory"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	// Store canonical type/material instead of the submitted text.
	CanonicalizeOnWrite bool `envconfig:"CANONICALIZE_ON_WRITE" default:"false"`
}

// AuthConfig holds the shared edit token and the CORS allow-list.
type AuthConfig struct {
	EditToken      string `envconfig:"EDIT_TOKEN" default:""`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:""`
}

// CacheConfig holds list cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"none"` // none, memory, or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost      string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort      int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"filament-inventory"`
}

// InventoryDBConfig holds filament store settings.
type InventoryDBConfig struct {
	Type string `envconfig:"INVENTORY_DB_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path string `envconfig:"INVENTORY_DB_PATH" default:"./data/filaments.db"`
	// PostgreSQL settings
	Host     string `envconfig:"INVENTORY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"INVENTORY_DB_PORT" default:"5432"`
	Name     string `envconfig:"INVENTORY_DB_NAME" default:"filaments"`
	User     string `envconfig:"INVENTORY_DB_USER" default:"postgres"`
	Password string `envconfig:"INVENTORY_DB_PASS" default:""`
	SSLMode  string `envconfig:"INVENTORY_DB_SSLMODE" default:"disable"`
}

// MySQLConfig holds MySQL connection settings, used when INVENTORY_DB_TYPE=mysql.
type MySQLConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"filaments"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// PostgresDSN returns the PostgreSQL connection string.
func (i *InventoryDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		i.User, i.Password, i.Host, i.Port, i.Name, i.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Origins splits ALLOWED_ORIGINS into trimmed, non-empty entries.
func (a *AuthConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
