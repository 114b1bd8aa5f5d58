// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable keys.
const (
	envInput           = "SALARY_INPUT"
	envDatabase        = "SALARY_DB"
	envTable           = "SALARY_TABLE"
	envEnumColumns     = "ENUM_COLUMNS"
	envRequiredColumns = "REQUIRED_COLUMNS"
	envGroupColumn     = "GROUP_COLUMN"
	envMeasureColumn   = "MEASURE_COLUMN"
	envDivisor         = "MEASURE_DIVISOR"
	envPolicy          = "TABLE_POLICY"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
)

// Config represents the application configuration.
type Config struct {
	// InputPath is the source salary data file.
	InputPath string
	// DatabasePath is the SQLite database file, created if absent.
	DatabasePath string
	// TableName is the persistent table name.
	TableName string
	// EnumColumns are declared as enumerated types with data-derived domains.
	EnumColumns []string
	// RequiredColumns are declared NOT NULL.
	RequiredColumns []string
	// GroupColumn is the aggregation grouping key.
	GroupColumn string
	// MeasureColumn is the aggregated per-row measure.
	MeasureColumn string
	// Divisor scales the measure (12 turns annual salary monthly).
	Divisor float64
	// Policy controls behavior against an existing populated table:
	// append, replace, or fail.
	Policy string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadDotenv loads a .env file into the process environment if one exists.
// A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load builds configuration from environment variables with defaults for the
// salary dataset.
func Load() (*Config, error) {
	cfg := &Config{
		InputPath:       getEnv(envInput, "salaries.csv"),
		DatabasePath:    getEnv(envDatabase, "salaries.db"),
		TableName:       getEnv(envTable, "salaries"),
		EnumColumns:     splitList(getEnv(envEnumColumns, "SEX,DESIGNATION,UNIT")),
		RequiredColumns: splitList(getEnv(envRequiredColumns, "FIRST NAME,LAST NAME,SEX,DESIGNATION,SALARY,UNIT")),
		GroupColumn:     getEnv(envGroupColumn, "DESIGNATION"),
		MeasureColumn:   getEnv(envMeasureColumn, "SALARY"),
		Divisor:         getEnvAsFloat(envDivisor, 12),
		Policy:          getEnv(envPolicy, "append"),
		LogLevel:        getEnv(envLogLevel, "info"),
		LogFormat:       getEnv(envLogFormat, "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.TableName == "" {
		return errors.New("table name is required")
	}
	if c.GroupColumn == "" {
		return errors.New("group column is required")
	}
	if c.MeasureColumn == "" {
		return errors.New("measure column is required")
	}
	if c.Divisor == 0 {
		return errors.New("measure divisor must be non-zero")
	}
	switch strings.ToLower(c.Policy) {
	case "append", "replace", "fail":
	default:
		return errors.New("table policy must be one of: append, replace, fail")
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated list, trimming surrounding whitespace
// from each entry.
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
