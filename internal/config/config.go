package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
)

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Namespace is a custom XMP namespace registered at startup.
type Namespace struct {
	URI    string `toml:"uri"`
	Prefix string `toml:"prefix"`
}

// Write contains the defaults applied when saving documents.
type Write struct {
	BackupSuffix    string `toml:"backup_suffix"`
	PreserveModTime bool   `toml:"preserve_mod_time"`
	Validate        bool   `toml:"validate"`
}

// Limits bounds the size of embedded images handed to callers.
type Limits struct {
	MaxPreviewSize   string `toml:"max_preview_size"`
	MaxThumbnailSize string `toml:"max_thumbnail_size"`
}

// Codec selects the failure classification table.
type Codec struct {
	Version string `toml:"version"`
}

// Config encapsulates all configuration values.
type Config struct {
	Logging    Logging     `toml:"logging"`
	Namespaces []Namespace `toml:"namespaces"`
	Write      Write       `toml:"write"`
	Limits     Limits      `toml:"limits"`
	Codec      Codec       `toml:"codec"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/imagemeta/config.toml")
}

// Load reads, normalizes and validates the configuration at path. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Parse(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return nil, err
		}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// MaxPreviewBytes returns the preview size limit in bytes, 0 for none.
func (c *Config) MaxPreviewBytes() int64 {
	n, _ := parseSize(c.Limits.MaxPreviewSize)
	return n
}

// MaxThumbnailBytes returns the thumbnail size limit in bytes, 0 for none.
func (c *Config) MaxThumbnailBytes() int64 {
	n, _ := parseSize(c.Limits.MaxThumbnailSize)
	return n
}

func parseSize(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return units.RAMInBytes(s)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	for i := range c.Namespaces {
		c.Namespaces[i].URI = strings.TrimSpace(c.Namespaces[i].URI)
		c.Namespaces[i].Prefix = strings.TrimSpace(c.Namespaces[i].Prefix)
	}
	c.Limits.MaxPreviewSize = strings.TrimSpace(c.Limits.MaxPreviewSize)
	c.Limits.MaxThumbnailSize = strings.TrimSpace(c.Limits.MaxThumbnailSize)
	c.Codec.Version = strings.TrimPrefix(strings.TrimSpace(c.Codec.Version), "v")
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
