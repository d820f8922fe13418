package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"hireflow/internal/api"
	"hireflow/internal/config"
	"hireflow/internal/pipeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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

// withService opens the store for the duration of one command invocation.
func (c *commandContext) withService(ctx context.Context, fn func(context.Context, *api.PipelineService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pipeline.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, api.NewPipelineService(store, cfg.Pipeline.PageSize))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
