// Package config loads the HCL configuration that names the grid sources and
// the optional storage behind them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Source kinds.
const (
	KindHiRes   = "hires"
	KindSynphot = "synphot"
)

// Cache kinds.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

const (
	EnvConfig   = "PHOENIX_CONFIG"
	EnvLogLevel = "PHOENIX_LOG_LEVEL"
)

// Config is the root of a configuration file.
type Config struct {
	Log     *Log      `hcl:"log,block"`
	Catalog *Catalog  `hcl:"catalog,block"`
	Cache   *Cache    `hcl:"cache,block"`
	Sources []*Source `hcl:"source,block"`
	Server  *Server   `hcl:"server,block"`
}

type Log struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// Catalog enables the SQLite listing memo. MaxAge bounds how long a stored
// listing is served; empty keeps it until removed.
type Catalog struct {
	Path   string `hcl:"path"`
	MaxAge string `hcl:"max_age,optional"`
}

// Cache selects a spectrum cache backend.
type Cache struct {
	Kind     string `hcl:"kind"`
	Path     string `hcl:"path,optional"`
	Addr     string `hcl:"addr,optional"`
	Username string `hcl:"username,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
	Prefix   string `hcl:"prefix,optional"`
	TTL      string `hcl:"ttl,optional"`
}

// Source describes one grid. At most one of BaseURL, Path and Bucket locates
// the files; none means the public default for the kind.
type Source struct {
	Name        string  `hcl:"name,label"`
	Kind        string  `hcl:"kind"`
	BaseURL     string  `hcl:"base_url,optional"`
	Model       string  `hcl:"model,optional"`
	MaxDepth    int     `hcl:"max_depth,optional"`
	Path        string  `hcl:"path,optional"`
	DownloadDir string  `hcl:"download_dir,optional"`
	Bucket      *Bucket `hcl:"bucket,block"`
}

type Bucket struct {
	Endpoint  string `hcl:"endpoint"`
	Name      string `hcl:"name"`
	Prefix    string `hcl:"prefix,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	Secure    bool   `hcl:"secure,optional"`
}

type Server struct {
	Addr string `hcl:"addr,optional"`
}

// Default serves the two public grids with text logging at info level.
func Default() *Config {
	cfg := &Config{
		Sources: []*Source{
			{Name: KindHiRes, Kind: KindHiRes},
			{Name: KindSynphot, Kind: KindSynphot},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path)
}

// Parse decodes configuration text; filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	cfg := &Config{}
	if diags = gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Resolve loads path, falling back to $PHOENIX_CONFIG and then to Default.
// $PHOENIX_LOG_LEVEL overrides the configured level.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = envOr(EnvConfig, "")
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	cfg.Log.Level = envOr(EnvLogLevel, cfg.Log.Level)
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	for _, s := range c.Sources {
		s.DownloadDir = expandHome(s.DownloadDir)
	}
}

// Validate checks the decoded configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("at least one source block is required"))
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("source %q: duplicate name", s.Name))
		}
		seen[s.Name] = true
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", s.Name, err))
		}
	}
	if c.Log != nil && c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	if c.Catalog != nil {
		if c.Catalog.Path == "" {
			errs = append(errs, errors.New("catalog: path is required"))
		}
		if _, err := parseDuration(c.Catalog.MaxAge); err != nil {
			errs = append(errs, fmt.Errorf("catalog: max_age: %w", err))
		}
	}
	if c.Cache != nil {
		if err := c.Cache.validate(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Source) validate() error {
	if s.Kind != KindHiRes && s.Kind != KindSynphot {
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	located := 0
	for _, set := range []bool{s.BaseURL != "", s.Path != "", s.Bucket != nil} {
		if set {
			located++
		}
	}
	if located > 1 {
		return errors.New("base_url, path and bucket are mutually exclusive")
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth %d is negative", s.MaxDepth)
	}
	return nil
}

func (c *Cache) validate() error {
	switch c.Kind {
	case CacheSQLite:
		if c.Path == "" {
			return errors.New("sqlite cache requires path")
		}
	case CacheRedis:
		if c.Addr == "" {
			return errors.New("redis cache requires addr")
		}
	default:
		return fmt.Errorf("unknown kind %q", c.Kind)
	}
	_, err := parseDuration(c.TTL)
	return err
}

// MaxAgeDuration returns the parsed catalog max_age, zero when unset.
func (c *Catalog) MaxAgeDuration() time.Duration {
	d, _ := parseDuration(c.MaxAge)
	return d
}

// TTLDuration returns the parsed cache ttl, zero when unset.
func (c *Cache) TTLDuration() time.Duration {
	d, _ := parseDuration(c.TTL)
	return d
}

// Find returns the source block named name.
func (c *Config) Find(name string) (*Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
