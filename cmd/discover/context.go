package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/config"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/reccache"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
	"github.com/yu-a0/discovery-engine-suite/internal/upstream"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	runID        string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		runID:        uuid.NewString(),
	}
}

// loadDotEnv reads ./.env into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(logging.NewComponentLogger(slog.Default(), "cli"),
			"failed to read .env", "dotenv_load_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "credentials from .env are not applied"))
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
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor returns the invocation logger, built once from config.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg, c.runID)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// commandCtx annotates cmd's context with the run id and command path.
func (c *commandContext) commandCtx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRunID(ctx, c.runID)
	return services.WithCommand(ctx, cmd.CommandPath())
}

func (c *commandContext) guard(name string, requestsPerMinute int, logger *slog.Logger) *upstream.Guard {
	cfg := c.config
	return upstream.NewGuard(upstream.Options{
		Name:              name,
		FailureThreshold:  cfg.Breaker.FailureThreshold,
		OpenTimeout:       time.Duration(cfg.Breaker.OpenSeconds) * time.Second,
		RequestsPerMinute: requestsPerMinute,
		Logger:            logger,
	})
}

func (c *commandContext) tmdbClient(cmd *cobra.Command) (*tmdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireTMDB(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "tmdb", "", err)
	}
	logger := c.loggerFor(cmd)
	return tmdb.New(
		tmdb.Credentials{Token: cfg.TMDB.Token, APIKey: cfg.TMDB.APIKey},
		cfg.TMDB.BaseURL,
		cfg.TMDB.Language,
		tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second),
		tmdb.WithGuard(c.guard("tmdb", 0, logger)),
		tmdb.WithLogger(logger),
	)
}

func (c *commandContext) anilistClient(cmd *cobra.Command) (*anilist.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerFor(cmd)
	return anilist.New(
		cfg.AniList.URL,
		anilist.WithTimeout(time.Duration(cfg.AniList.TimeoutSeconds)*time.Second),
		anilist.WithGuard(c.guard("anilist", cfg.AniList.RequestsPerMinute, logger)),
		anilist.WithLogger(logger),
	), nil
}

// cacheBackend opens the configured recommendation cache. Callers close it.
func (c *commandContext) cacheBackend(cmd *cobra.Command) (reccache.Backend, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return reccache.Open(c.commandCtx(cmd), cfg, c.loggerFor(cmd))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
