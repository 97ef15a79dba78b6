package main

import (
	"context"
	"strings"
	"sync"

	"gaffer/internal/config"
	"gaffer/internal/store"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
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

func (c *commandContext) apiBind(cfg *config.Config) string {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return strings.TrimSpace(*c.apiFlag)
	}
	return cfg.Paths.APIBind
}

// withAccess prefers the daemon API when it is reachable and falls back to
// direct database access otherwise. Exactly one of client and st is non-nil.
func (c *commandContext) withAccess(ctx context.Context, fn func(client *apiClient, st *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	client := newAPIClient(c.apiBind(cfg), cfg.Paths.APIToken)
	if client.Ping(ctx) {
		return fn(client, nil)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(nil, st)
}
