package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNamespaces(); err != nil {
		return err
	}
	return c.validateLimits()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNamespaces() error {
	seen := map[string]bool{}
	for i, ns := range c.Namespaces {
		if ns.URI == "" || ns.Prefix == "" {
			return fmt.Errorf("namespaces[%d]: uri and prefix are required", i)
		}
		if !strings.HasSuffix(ns.URI, "/") && !strings.HasSuffix(ns.URI, "#") {
			return fmt.Errorf("namespaces[%d].uri must end with / or #", i)
		}
		if strings.ContainsAny(ns.Prefix, ".: /") {
			return fmt.Errorf("namespaces[%d].prefix %q is not a valid prefix", i, ns.Prefix)
		}
		if seen[ns.Prefix] {
			return fmt.Errorf("namespaces[%d]: duplicate prefix %q", i, ns.Prefix)
		}
		seen[ns.Prefix] = true
	}
	return nil
}

func (c *Config) validateLimits() error {
	if _, err := parseSize(c.Limits.MaxPreviewSize); err != nil {
		return fmt.Errorf("limits.max_preview_size: %w", err)
	}
	if _, err := parseSize(c.Limits.MaxThumbnailSize); err != nil {
		return fmt.Errorf("limits.max_thumbnail_size: %w", err)
	}
	if c.Codec.Version != "" && strings.Count(c.Codec.Version, ".") < 1 {
		return errors.New("codec.version must look like MAJOR.MINOR[.PATCH]")
	}
	return nil
}
