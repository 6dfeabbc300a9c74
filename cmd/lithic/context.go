package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lithic/internal/config"
	"lithic/internal/logging"
	"lithic/internal/pipeline"
	"lithic/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
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

// cliLogger builds the CLI logger lazily: console format on stderr so command
// output on stdout stays parseable.
func (c *commandContext) cliLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// newPipeline builds a pipeline with the asset-record store attached. When
// another lithic process holds the store lock, the pipeline runs without
// record keeping rather than failing the media operation.
func (c *commandContext) newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		if !errors.Is(err, store.ErrLocked) {
			return nil, nil, fmt.Errorf("open asset store: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Asset store is locked by another lithic process; continuing without record keeping")
		st = nil
	}

	cleanup := func() {
		if st != nil {
			_ = st.Close()
		}
	}
	return pipeline.New(cfg, c.cliLogger(), st), cleanup, nil
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}
