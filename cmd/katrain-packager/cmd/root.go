package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noahxp/katrain/internal/config"
	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/service/packager"
	"github.com/noahxp/katrain/internal/version"
)

// errUnknownLogLevel is returned when the log level flag holds an unsupported value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel controls logging verbosity for the run.
	logLevel string

	// rootCmd represents the base command for building and packaging the release image.
	rootCmd = &cobra.Command{
		Use:   "katrain-packager",
		Short: "Build the application bundle and package it into a disk image",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			options := &packager.Options{
				ConfigPath: configPath,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the katrain-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error, fatal)")
}
