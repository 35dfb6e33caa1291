package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetSource   string
	DatasetEncoding string
	DatasetWatch    bool
	// DatasetRefresh is the cron refetch interval; zero disables it.
	DatasetRefresh time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	AggregateWorkers  int
	ParallelThreshold int

	MinYear int
	MaxYear int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refresh, err := parseDuration("DATASET_REFRESH", "")
	if err != nil {
		return nil, err
	}
	if refresh < 0 {
		return nil, errors.New("DATASET_REFRESH must not be negative")
	}

	watch, err := parseBool("DATASET_WATCH", false)
	if err != nil {
		return nil, err
	}

	workers, err := parseInt("AGGREGATE_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	threshold, err := parseInt("PARALLEL_THRESHOLD", 50_000)
	if err != nil {
		return nil, err
	}
	minYear, err := parseInt("MIN_YEAR", 2005)
	if err != nil {
		return nil, err
	}
	maxYear, err := parseInt("MAX_YEAR", 2020)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatasetSource:     sharedcfg.EnvOrDefault("DATASET_SOURCE", "airline_data.csv"),
		DatasetEncoding:   strings.ToLower(sharedcfg.EnvOrDefault("DATASET_ENCODING", "iso-8859-1")),
		DatasetWatch:      watch,
		DatasetRefresh:    refresh,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		AggregateWorkers:  workers,
		ParallelThreshold: threshold,
		MinYear:           minYear,
		MaxYear:           maxYear,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the cross-field rules. Load calls it; callers that
// override fields after loading (CLI flags) call it again.
func (c *Config) Validate() error {
	if c.DatasetSource == "" {
		return errors.New("DATASET_SOURCE is required")
	}
	switch c.DatasetEncoding {
	case "iso-8859-1", "latin1", "utf-8", "utf8":
	default:
		return fmt.Errorf("invalid DATASET_ENCODING %q", c.DatasetEncoding)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if c.AggregateWorkers < 0 {
		return errors.New("AGGREGATE_WORKERS must not be negative")
	}
	if c.ParallelThreshold <= 0 {
		return errors.New("PARALLEL_THRESHOLD must be positive")
	}
	if c.MinYear > c.MaxYear {
		return fmt.Errorf("MIN_YEAR %d is after MAX_YEAR %d", c.MinYear, c.MaxYear)
	}
	return nil
}

// Years lists the supported report years in ascending order.
func (c *Config) Years() []int {
	years := make([]int, 0, c.MaxYear-c.MinYear+1)
	for y := c.MinYear; y <= c.MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

func parseDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
