package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog.GO/config"
	"catalog.GO/core/app"
	"catalog.GO/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Product catalog tooling: fetch, search and index the CSV catalog",
}

// Execute applies registered commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewContainer loads configuration from the environment and builds the
// services a command needs.
func NewContainer() (*app.Container, error) {
	if err := config.LoadAppConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig
	log := logger.Must(logger.Config{Level: cfg.LogLevel, Development: cfg.Debug})
	config.InitRedis()
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err != nil {
			log.Warn("redis configured but not reachable, catalog snapshots stay in process", logger.Error(err))
			config.RedisClient = nil
		}
	}
	return app.New(cfg, log, config.RedisClient), nil
}

func MustContainer(cmd *cobra.Command) *app.Container {
	c, err := NewContainer()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return c
}
