package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"seedcat/internal/config"
	"seedcat/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// buildLogger constructs the run logger, resolving the "auto" format to json
// when stdout is not a terminal.
func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	format := cfg.Logging.Format
	if c.logFormatFlag != nil {
		switch flag := strings.ToLower(strings.TrimSpace(*c.logFormatFlag)); flag {
		case "", "auto":
			if !stdoutIsTerminal() {
				format = "json"
			}
		case "console", "json":
			format = flag
		default:
			return nil, fmt.Errorf("unsupported log format %q", *c.logFormatFlag)
		}
	}

	adjusted := *cfg
	adjusted.Logging.Format = format
	return logging.NewFromConfig(&adjusted)
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
