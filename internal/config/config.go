// Package config loads the jsys configuration file.
//
// The file is optional. Its path comes from the --config flag or the
// JSYS_CONFIG environment variable; without either, Default is used.
// Command-line flags override values from the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "JSYS_CONFIG"

// Config is the jsys configuration.
type Config struct {
	// Names lists word-list files used to resolve field name hashes.
	Names []string `yaml:"names"`

	// CacheDir is the Yaz0 compression cache directory. Empty disables the cache.
	CacheDir string `yaml:"cache_dir"`

	// Jobs bounds concurrent batch work. Zero uses GOMAXPROCS.
	Jobs int `yaml:"jobs"`

	// Encoding is the WHATWG name of the text encoding for names and strings.
	// Default: shift_jis
	Encoding string `yaml:"encoding"`

	// Registry configures the OCI registry client.
	Registry RegistryConfig `yaml:"registry"`
}

// RegistryConfig configures the OCI registry client.
type RegistryConfig struct {
	// PlainHTTP disables TLS, for local development registries.
	PlainHTTP bool `yaml:"plain_http"`

	// Compression is the default archive layer compression: none, yaz0 or zstd.
	Compression string `yaml:"compression"`

	// Host, Username and Password configure static credentials. When Host
	// is empty the Docker credential store is used instead.
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Encoding: "shift_jis",
		Registry: RegistryConfig{Compression: "yaz0"},
	}
}

// Load loads the file named by JSYS_CONFIG, or returns Default if the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default.
//
// Unknown keys are rejected. ${VAR} references in paths are expanded, and
// relative word-list paths are resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, name := range cfg.Names {
		if !filepath.IsAbs(name) {
			cfg.Names[i] = filepath.Join(base, name)
		}
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandVariables expands ${HOME} and similar variables in paths.
func (c *Config) expandVariables() {
	c.CacheDir = os.ExpandEnv(c.CacheDir)
	for i, name := range c.Names {
		c.Names[i] = os.ExpandEnv(name)
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, err := c.TextEncoding(); err != nil {
		return err
	}
	switch c.Registry.Compression {
	case "", "none", "yaz0", "zstd":
	default:
		return fmt.Errorf("unknown registry compression %q", c.Registry.Compression)
	}
	return nil
}

// TextEncoding resolves Encoding. An empty name means Shift-JIS.
func (c *Config) TextEncoding() (encoding.Encoding, error) {
	name := c.Encoding
	if name == "" {
		name = "shift_jis"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}
