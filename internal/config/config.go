package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/gormstore"
)

const envPrefix = "CHECKIN_"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC health listener

	Env       string `yaml:"env"`        // "dev" | "prod"
	PublicURL string `yaml:"public_url"` // base of the links encoded in QR passes

	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Health  HealthConfig  `yaml:"health"`

	// Seed overrides the demo registrations inserted in dev.
	Seed []service.DevRegistration `yaml:"seed"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite file.
	Path string `yaml:"path"`
	// DSN is used verbatim for postgres/mysql; when empty it is built from
	// the connection fields below.
	DSN               string `yaml:"dsn"`
	gormstore.DSNConf `yaml:",inline"`
	Debug             bool `yaml:"debug"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
}

type HealthConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

func defaults() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":9090",
		Env:      "dev",
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "./data/checkin.db",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Health:  HealthConfig{IntervalSeconds: 15},
	}
}

// FromEnv builds the configuration from defaults and CHECKIN_* variables.
func FromEnv() Config {
	cfg := defaults()
	cfg.applyEnv()
	cfg.normalize()
	return cfg
}

// Load reads .env from the working directory if present, then the YAML file
// at path (optional), then applies CHECKIN_* overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	cfg := FromEnv()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
		// Environment still wins over the file.
		cfg.applyEnv()
		cfg.normalize()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getenvDefault(envPrefix+"HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = getenvDefault(envPrefix+"GRPC_ADDR", c.GRPCAddr)
	c.Env = getenvDefault(envPrefix+"ENV", c.Env)
	c.PublicURL = getenvDefault(envPrefix+"PUBLIC_URL", c.PublicURL)

	c.Storage.Driver = getenvDefault(envPrefix+"STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getenvDefault(envPrefix+"DB_PATH", c.Storage.Path)
	c.Storage.DSN = getenvDefault(envPrefix+"DB_DSN", c.Storage.DSN)
	c.Storage.User = getenvDefault(envPrefix+"DB_USER", c.Storage.User)
	c.Storage.Password = getenvDefault(envPrefix+"DB_PASSWORD", c.Storage.Password)
	c.Storage.Host = getenvDefault(envPrefix+"DB_HOST", c.Storage.Host)
	c.Storage.Port = getenvInt(envPrefix+"DB_PORT", c.Storage.Port)
	c.Storage.DB = getenvDefault(envPrefix+"DB_NAME", c.Storage.DB)
	c.Storage.Debug = getenvBool(envPrefix+"DB_DEBUG", c.Storage.Debug)

	c.Logging.Level = getenvDefault(envPrefix+"LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getenvDefault(envPrefix+"LOG_FORMAT", c.Logging.Format)

	c.Health.IntervalSeconds = getenvInt(envPrefix+"HEALTH_INTERVAL_SECONDS", c.Health.IntervalSeconds)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env != "dev" && c.Env != "prod" {
		// fail-soft: treat unknown as dev
		c.Env = "dev"
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.PublicURL = strings.TrimRight(strings.TrimSpace(c.PublicURL), "/")
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
		return nil
	case DriverPostgres, DriverMySQL:
		if c.Storage.DSN == "" && c.Storage.Host == "" {
			return errors.Errorf("storage driver %s needs dsn or host", c.Storage.Driver)
		}
		return nil
	default:
		return errors.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
}

func (c Config) IsDev() bool { return c.Env == "dev" }

// SeedRegistrations returns the configured demo registrations, or the
// built-in set when none are configured.
func (c Config) SeedRegistrations() []service.DevRegistration {
	if len(c.Seed) > 0 {
		return c.Seed
	}
	return service.DefaultDevRegistrations
}

// Gorm returns the connection settings for the postgres and mysql drivers.
func (s StorageConfig) Gorm() (gormstore.Config, error) {
	driver := gormstore.DriverType(s.Driver)
	dsn := s.DSN
	if dsn == "" {
		var err error
		if dsn, err = gormstore.DSN(driver, s.DSNConf); err != nil {
			return gormstore.Config{}, err
		}
	}
	return gormstore.Config{Driver: driver, DSN: dsn, Debug: s.Debug}, nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}
