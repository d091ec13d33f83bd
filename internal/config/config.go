package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartcity/collisions/internal/service"
)

// Data source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceMock     = "mock"
)

// DefaultDataURL is the published collisions extract
const DefaultDataURL = "https://media.githubusercontent.com/media/fjarlaegur/data_visualisation_project/main/Motor_Vehicle_Collisions_-_Crashes.csv?token=A6J3IEQMADD5NSSKQHCP4N3GELW3A"

// Config holds application settings
type Config struct {
	Port            string         `yaml:"port"`
	Env             string         `yaml:"env"`
	DataSource      string         `yaml:"data_source"`
	DataURL         string         `yaml:"data_url"`
	DatabaseURL     string         `yaml:"database_url"`
	CollisionsTable string         `yaml:"collisions_table"`
	OrderBy         []string       `yaml:"order_by"`
	MaxRows         int            `yaml:"max_rows"`
	FetchTimeout    time.Duration  `yaml:"fetch_timeout"`
	Preload         bool           `yaml:"preload"`
	Schema          service.Schema `yaml:"schema"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		DataSource:      SourceCSV,
		DataURL:         DefaultDataURL,
		CollisionsTable: "collisions",
		OrderBy:         []string{"crash_date", "crash_time"},
		MaxRows:         100000,
		FetchTimeout:    30 * time.Second,
		Preload:         true,
		Schema:          service.DefaultSchema(),
	}
}

// Load reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("GO_ENV", cfg.Env)
	cfg.DataSource = getEnv("DATA_SOURCE", cfg.DataSource)
	cfg.DataURL = getEnv("DATA_URL", cfg.DataURL)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.CollisionsTable = getEnv("COLLISIONS_TABLE", cfg.CollisionsTable)
	cfg.OrderBy = getEnvList("ORDER_BY", cfg.OrderBy)

	var err error
	if cfg.MaxRows, err = getEnvInt("MAX_ROWS", cfg.MaxRows); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return nil, err
	}
	if cfg.Preload, err = getEnvBool("PRELOAD", cfg.Preload); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourceCSV, SourcePostgres, SourceMock:
	default:
		return fmt.Errorf("config: unknown data source %q", c.DataSource)
	}
	if c.MaxRows <= 0 {
		return fmt.Errorf("config: max_rows must be positive, got %d", c.MaxRows)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config: fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.DataSource == SourceCSV && c.DataURL == "" {
		return errors.New("config: data_url is required for the csv source")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated value; "-" clears the list.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	switch value {
	case "":
		return defaultValue
	case "-":
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return b, nil
}
