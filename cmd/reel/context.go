package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"reel/internal/config"
	"reel/internal/history"
	"reel/internal/logging"
	"reel/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// newSession builds a session wired with the journal when history is
// enabled. The returned cleanup closes the journal and must be called
// once the command finishes.
func (c *commandContext) newSession() (*session.Session, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var opts []session.Option
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open history journal: %w", err)
		}
		opts = append(opts, session.WithHistory(store))
		cleanup = func() { _ = store.Close() }
	}

	return session.New(cfg, logger, opts...), cleanup, nil
}
