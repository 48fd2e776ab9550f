package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
)

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "prospect",
		Short:         "Find and enrich kids-activity businesses for a location",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (defaults and environment when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newQueriesCmd(opts))
	return cmd
}

// setup loads configuration and a console logger for one command.
func (o *rootOptions) setup() (*conf.Config, *logger.Logger, error) {
	config, err := conf.LoadConfig(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	// stdout carries the JSON result
	logConfig := config.Log.With(
		logger.WithLevel(o.logLevel),
		logger.WithOutput("file"),
		logger.WithDefaultFilename("logs/prospect.log"),
	)

	log, err := logger.New(logConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return config, log, nil
}
