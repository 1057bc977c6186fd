package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog sources
const (
	CatalogSourceYAML     = "yaml"
	CatalogSourcePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Catalog struct {
		// Source is "yaml" or "postgres".
		Source  string `yaml:"source" env:"CATALOG_SOURCE"`
		DataDir string `yaml:"data_dir" env:"CATALOG_DATA_DIR"`
		// Seed copies the YAML catalog into Postgres on startup.
		Seed bool `yaml:"seed" env:"CATALOG_SEED"`
	} `yaml:"catalog"`

	Planner PlannerConfig `yaml:"planner"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// PlannerConfig holds the degree rules applied to every planning run.
// Credit values are in catalog units.
type PlannerConfig struct {
	DefaultProgram string `yaml:"default_program" env:"PLANNER_DEFAULT_PROGRAM"`
	CreditScale    int    `yaml:"credit_scale" env:"PLANNER_CREDIT_SCALE"`
	FinalTerm      int    `yaml:"final_term" env:"PLANNER_FINAL_TERM"`

	TotalTarget float64 `yaml:"total_target" env:"PLANNER_TOTAL_TARGET"`
	TotalSlack  float64 `yaml:"total_slack" env:"PLANNER_TOTAL_SLACK"`

	ExtendedCeiling   float64 `yaml:"extended_ceiling" env:"PLANNER_EXTENDED_CEILING"`
	ExtendedAfterTerm int     `yaml:"extended_after_term" env:"PLANNER_EXTENDED_AFTER_TERM"`
	MaxExtendedTerms  int     `yaml:"max_extended_terms" env:"PLANNER_MAX_EXTENDED_TERMS"`

	HumanitiesPerTerm int     `yaml:"humanities_per_term" env:"PLANNER_HUMANITIES_PER_TERM"`
	HumanitiesFloor   float64 `yaml:"humanities_floor" env:"PLANNER_HUMANITIES_FLOOR"`
	ElectiveFloor     float64 `yaml:"elective_floor" env:"PLANNER_ELECTIVE_FLOOR"`

	MinorPerTerm           int     `yaml:"minor_per_term" env:"PLANNER_MINOR_PER_TERM"`
	MinorUniqueCredits     float64 `yaml:"minor_unique_credits" env:"PLANNER_MINOR_UNIQUE_CREDITS"`
	MinorOpenChoiceCredits float64 `yaml:"minor_open_choice_credits" env:"PLANNER_MINOR_OPEN_CHOICE_CREDITS"`
	MinorTotalCredits      float64 `yaml:"minor_total_credits" env:"PLANNER_MINOR_TOTAL_CREDITS"`

	SolveTimeout    string  `yaml:"solve_timeout" env:"PLANNER_SOLVE_TIMEOUT"`
	Relax           bool    `yaml:"relax" env:"PLANNER_RELAX"`
	RelaxCreditStep float64 `yaml:"relax_credit_step" env:"PLANNER_RELAX_CREDIT_STEP"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and env vars are enough to run.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "degreeplan"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// Catalog defaults
	config.Catalog.Source = CatalogSourceYAML
	config.Catalog.DataDir = "data"

	config.Planner = DefaultPlannerConfig()

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// DefaultPlannerConfig returns the standard degree rules.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		DefaultProgram:         "EE1",
		CreditScale:            10,
		FinalTerm:              8,
		TotalTarget:            150,
		TotalSlack:             9,
		ExtendedCeiling:        26.5,
		ExtendedAfterTerm:      2,
		MaxExtendedTerms:       2,
		HumanitiesPerTerm:      2,
		HumanitiesFloor:        15,
		ElectiveFloor:          15,
		MinorPerTerm:           2,
		MinorUniqueCredits:     10,
		MinorOpenChoiceCredits: 10,
		MinorTotalCredits:      20,
		SolveTimeout:           "30s",
		Relax:                  true,
		RelaxCreditStep:        3,
	}
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Catalog.Source) {
	case CatalogSourceYAML:
		if config.Catalog.DataDir == "" {
			return fmt.Errorf("catalog data directory is required for the yaml source")
		}
	case CatalogSourcePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres source")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", config.Catalog.Source)
	}
	config.Catalog.Source = strings.ToLower(config.Catalog.Source)

	return config.Planner.Validate()
}

// Validate checks the planner rules for consistency.
func (p PlannerConfig) Validate() error {
	if p.CreditScale <= 0 {
		return fmt.Errorf("credit scale must be positive")
	}
	if p.FinalTerm < 1 {
		return fmt.Errorf("final term must be at least 1")
	}
	if p.TotalTarget < 0 || p.TotalSlack < 0 {
		return fmt.Errorf("total credit target and slack cannot be negative")
	}
	if p.MaxExtendedTerms < 0 || p.ExtendedAfterTerm < 0 {
		return fmt.Errorf("extended load settings cannot be negative")
	}
	if p.HumanitiesPerTerm < 0 || p.MinorPerTerm < 0 {
		return fmt.Errorf("per-term course caps cannot be negative")
	}
	if p.HumanitiesFloor < 0 || p.ElectiveFloor < 0 {
		return fmt.Errorf("category floors cannot be negative")
	}
	if p.RelaxCreditStep < 0 {
		return fmt.Errorf("relax credit step cannot be negative")
	}
	if _, err := time.ParseDuration(p.SolveTimeout); err != nil {
		return fmt.Errorf("invalid solve timeout: %w", err)
	}
	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// UsesPostgres reports whether the catalog is read from the database.
func (c *Config) UsesPostgres() bool {
	return c.Catalog.Source == CatalogSourcePostgres
}
