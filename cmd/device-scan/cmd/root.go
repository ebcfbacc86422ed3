package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/logger"
	"github.com/fedexist/empatica-challenge/internal/service/scanner"
	"github.com/fedexist/empatica-challenge/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// bucketPath overrides the bucket root from configuration.
	bucketPath string
	// workers overrides the cap on concurrent device evaluations.
	workers int
	// logLevel overrides the minimum level for log output.
	logLevel string

	// rootCmd represents the base command scanning the bucket for faulty devices.
	rootCmd = &cobra.Command{
		Use:   "device-scan [days...]",
		Short: "Scan recorded days and report malfunctioning devices.",
		Long: `Walks the sample bucket and evaluates every device recorded on the requested days.

Days are given as YYYY-MM-DD arguments; with no arguments yesterday is scanned.
Each device's streams are aligned to a common rate and split into wear segments.
Segments are judged by the malfunction rules and thresholds from configuration.
Faulty devices are announced on stdout and on Kafka when a topic is configured.
Per-device reports are saved to the report directory and to Redis when configured.

Unreadable or unjudgeable devices never abort a scan. They are recorded as
unable to evaluate and the scan continues with the remaining devices.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if err := applyLogLevel(); err != nil {
				return err
			}

			// Flag overrides win over the configuration file.
			options := &scanner.Options{
				ConfigPath: configPath,
				BucketPath: bucketPath,
				Workers:    workers,
				Days:       args,
			}

			return scanner.Run(ctx, options)
		},
	}

	// initCmd writes a settings file prefilled with the reference defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default thresholds and rates",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(context.Background(), "Settings file written", "path", configPath)

			return nil
		},
	}
)

// Execute runs the device-scan CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel lowers or raises the global log level per the flag.
func applyLogLevel() error {
	if logLevel == "" {
		return nil
	}

	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&bucketPath, "bucket", "b", "", "bucket root with device recordings, overrides configuration")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent device evaluations, overrides configuration")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level: debug, info, warn or error")

	initCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	rootCmd.AddCommand(initCmd)
}
