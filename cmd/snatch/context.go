package main

import (
	"strings"
	"sync"

	"snatch/internal/apiclient"
	"snatch/internal/config"
)

type commandContext struct {
	addrFlag   *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addrFlag, configFlag *string) *commandContext {
	return &commandContext{
		addrFlag:   addrFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, _, _, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// client resolves the daemon address from the --addr flag, then the
// configuration, then the built-in default.
func (c *commandContext) client() *apiclient.Client {
	var addr string
	if c.addrFlag != nil {
		addr = strings.TrimSpace(*c.addrFlag)
	}
	if addr == "" {
		if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
			addr = cfg.Paths.APIBind
		}
	}
	if addr == "" {
		addr = "127.0.0.1:5823"
	}
	return apiclient.New(addr)
}
