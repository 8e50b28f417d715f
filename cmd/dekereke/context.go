package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dekereke/internal/config"
	"dekereke/internal/engine"
	"dekereke/internal/execute"
	"dekereke/internal/ledger"
	"dekereke/internal/logging"
	"dekereke/internal/services"
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
			Output: os.Stderr,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runContext attaches a fresh run id and the configured folder to the
// command's context so every log line of the run carries both.
func (c *commandContext) runContext(parent context.Context) context.Context {
	ctx := services.WithRunID(parent, uuid.NewString())
	if cfg, err := c.ensureConfig(); err == nil {
		ctx = services.WithFolder(ctx, cfg.Paths.AudioDir)
	}
	return ctx
}

// runPass executes one read-only reconciliation pass.
func (c *commandContext) runPass(ctx context.Context) (*engine.Pass, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	pass, err := engine.New(cfg, logger).Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pass, cfg, nil
}

// openLedger opens the identity store, seeding it from any previously
// exported machine log when the database file is missing.
func (c *commandContext) openLedger() (*ledger.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	dbPath := filepath.Join(cfg.Paths.LogDir, "ledger.db")
	machineLog := filepath.Join(cfg.Paths.AudioDir, execute.MachineLogName)
	return ledger.Open(dbPath, machineLog)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
