// Package config loads xsplot settings from an optional YAML file with
// XSPLOT_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"xsplot/internal/blob"
	"xsplot/internal/series"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "xsplot.yaml"

// Config is the full xsplot configuration.
type Config struct {
	Listen    string            `yaml:"listen"`
	PageSize  int               `yaml:"page_size"`
	Logging   LoggingConfig     `yaml:"logging"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Fetch     FetchConfig       `yaml:"fetch"`
	Libraries map[string]string `yaml:"libraries"`
	Blob      blob.Config       `yaml:"blob"`
	Export    ExportConfig      `yaml:"export"`
}

// LoggingConfig selects the zap logger flavour.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Catalog sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// CatalogConfig says where catalog records come from.
type CatalogConfig struct {
	Source string `yaml:"source"` // embedded, file, sqlite, postgres
	Path   string `yaml:"path"`   // JSON file or SQLite database
	DSN    string `yaml:"dsn"`    // Postgres connection string
}

// FetchConfig tunes remote dataset fetching.
type FetchConfig struct {
	Timeout     string `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"`
	CacheSize   int    `yaml:"cache_size"`
	// PersistSeries keeps fetched datasets in the blob store.
	PersistSeries bool `yaml:"persist_series"`
}

// ExportConfig tunes the export worker.
type ExportConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		PageSize: 10,
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Catalog:  CatalogConfig{Source: SourceEmbedded},
		Fetch: FetchConfig{
			Timeout:     "30s",
			Concurrency: series.DefaultConcurrency,
			CacheSize:   series.DefaultCacheSize,
		},
		Blob:   blob.Config{Driver: string(blob.DriverFilesystem), FSRoot: "./blobdata"},
		Export: ExportConfig{QueueSize: 32},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is only an error when explicit.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

// applyEnv applies XSPLOT_* overrides.
func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("XSPLOT_LISTEN", &c.Listen)
	str("XSPLOT_LOG_LEVEL", &c.Logging.Level)
	str("XSPLOT_LOG_FORMAT", &c.Logging.Format)
	str("XSPLOT_CATALOG_SOURCE", &c.Catalog.Source)
	str("XSPLOT_CATALOG_PATH", &c.Catalog.Path)
	str("XSPLOT_CATALOG_DSN", &c.Catalog.DSN)
	str("XSPLOT_FETCH_TIMEOUT", &c.Fetch.Timeout)
	str("XSPLOT_BLOB_DRIVER", &c.Blob.Driver)
	str("XSPLOT_BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("XSPLOT_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("XSPLOT_BLOB_S3_REGION", &c.Blob.S3.Region)
	str("XSPLOT_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	str("XSPLOT_BLOB_S3_PREFIX", &c.Blob.S3.KeyPrefix)
	for key, dst := range map[string]*int{
		"XSPLOT_PAGE_SIZE":         &c.PageSize,
		"XSPLOT_FETCH_CONCURRENCY": &c.Fetch.Concurrency,
		"XSPLOT_FETCH_CACHE_SIZE":  &c.Fetch.CacheSize,
		"XSPLOT_EXPORT_QUEUE_SIZE": &c.Export.QueueSize,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"XSPLOT_FETCH_PERSIST_SERIES": &c.Fetch.PersistSeries,
		"XSPLOT_BLOB_S3_PATH_STYLE":   &c.Blob.S3.PathStyle,
	} {
		if err := flag(key, dst); err != nil {
			return err
		}
	}
	return nil
}

var validSources = []string{SourceEmbedded, SourceFile, SourceSQLite, SourcePostgres}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if !slices.Contains(validSources, c.Catalog.Source) {
		return fmt.Errorf("invalid catalog source %q (valid: %v)", c.Catalog.Source, validSources)
	}
	if (c.Catalog.Source == SourceFile || c.Catalog.Source == SourceSQLite) && c.Catalog.Path == "" {
		return fmt.Errorf("catalog source %s requires catalog.path", c.Catalog.Source)
	}
	if c.Catalog.Source == SourcePostgres && c.Catalog.DSN == "" {
		return fmt.Errorf("catalog source %s requires catalog.dsn", c.Catalog.Source)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	return nil
}

// FetchTimeout parses the remote request timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	if c.Fetch.Timeout == "" {
		return series.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch.timeout %q: %w", c.Fetch.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("fetch.timeout must be positive, got %s", d)
	}
	return d, nil
}

// LibraryMap returns the default libraries with configured overrides applied.
func (c *Config) LibraryMap() series.Libraries {
	return series.DefaultLibraries().With(c.Libraries)
}
