package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/logger"
	"github.com/fedexist/empatica-challenge/internal/service/checkup"
	"github.com/fedexist/empatica-challenge/internal/version"
)

// faultyExitCode reports a device that was evaluated and found faulty,
// so callers can tell a bad device from a failed check.
const faultyExitCode = 3

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the minimum level for log output.
	logLevel string

	// rootCmd represents the base command evaluating a single device folder.
	rootCmd = &cobra.Command{
		Use:   "device-check <device-folder>",
		Short: "Evaluate one device folder and print its verdict.",
		Long: `Evaluates the recordings of a single device folder and prints the verdict as JSON.

The folder must hold the three stream files: on_wrist.csv, temperature.csv and
ppg.csv. Sample rates and thresholds are taken from the configuration file.
The recording day is inferred from the folder path when it sits in a date bucket.

Exit status reports the outcome: 0 when the device is healthy, 3 when it is
faulty and 1 when it could not be evaluated.`,
		Args: cobra.ExactArgs(1),
		// A faulty verdict is an expected outcome, not a usage mistake.
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if err := applyLogLevel(); err != nil {
				return err
			}

			options := &checkup.Options{
				ConfigPath: configPath,
				DeviceDir:  args[0],
			}

			return checkup.Run(ctx, options)
		},
	}
)

// Execute runs the device-check CLI. Exit status is 0 for a healthy device,
// 3 for a faulty one and 1 when the device could not be evaluated.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, checkup.ErrDeviceFaulty) {
			os.Exit(faultyExitCode)
		}

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
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level: debug, info, warn or error")
}
