package main

import (
	"log/slog"

	"retempo/internal/config"
	"retempo/internal/logging"
)

// commandContext carries lazily loaded configuration shared by subcommands.
type commandContext struct {
	configFlag *string

	cfg      *config.Config
	cfgPath  string
	cfgFound bool
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, resolved, found, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = resolved
	c.cfgFound = found
	return cfg, nil
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}
