package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStretch(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStretch() error {
	if c.Stretch.Binary == "" {
		return errors.New("stretch.binary must be set")
	}
	// rubberband accepts crispness presets 0 through 6.
	if c.Stretch.Crispness < 0 || c.Stretch.Crispness > 6 {
		return fmt.Errorf("stretch.crispness must be between 0 and 6, got %d", c.Stretch.Crispness)
	}
	if c.Stretch.TimeoutSeconds < 0 {
		return errors.New("stretch.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
