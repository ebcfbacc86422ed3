package checkup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/domain/health"
	"github.com/fedexist/empatica-challenge/internal/logger"
	"github.com/fedexist/empatica-challenge/internal/pipeline"
	"github.com/fedexist/empatica-challenge/internal/repository/samples"
)

// Options controls the single-device checkup.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DeviceDir is the device directory holding the three stream files.
	DeviceDir string
	// Out receives the report JSON. Defaults to stdout.
	Out io.Writer
}

// ErrDeviceFaulty reports that the checked device violated at least one rule.
// Callers translate it into a dedicated exit code so scripts can tell a
// faulty device from a failed evaluation.
var ErrDeviceFaulty = errors.New("device is faulty")

// Run evaluates the device directory and prints the report. The error
// distinguishes the three outcomes: nil for healthy, ErrDeviceFaulty for
// faulty and anything else for unable to evaluate.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "device-check")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	deviceDir := filepath.Clean(opts.DeviceDir)
	device := filepath.Base(deviceDir)
	ctx = logger.WithKV(ctx, "device", device)

	streams, err := samples.LoadDir(deviceDir, cfg.StreamTemplate())
	if err != nil {
		return fmt.Errorf("load streams: %w", err)
	}

	verdict, err := pipeline.Evaluate(streams, cfg.PipelineThresholds())
	if err != nil {
		return fmt.Errorf("evaluate device: %w", err)
	}

	deviceReport := health.DeviceReport{
		Device:       device,
		Day:          inferDay(deviceDir),
		EvaluationID: uuid.New().String(),
		Outcome:      health.OutcomeHealthy,
		Verdict:      verdict,
	}
	if verdict.IsFaulty {
		deviceReport.Outcome = health.OutcomeFaulty
	}

	logger.InfoKV(ctx, "Device evaluated", "outcome", deviceReport.Outcome, "evaluation_id", deviceReport.EvaluationID)

	data, err := json.MarshalIndent(&deviceReport, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if _, err = fmt.Fprintf(out, "%s\n", data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if verdict.IsFaulty {
		return fmt.Errorf("%w: %s", ErrDeviceFaulty, device)
	}

	return nil
}

// inferDay recovers the recording day from a bucket-shaped path such as
// <bucket>/2023/01/29/device_007. It returns an empty string when the
// directory does not sit inside a day layout.
func inferDay(deviceDir string) string {
	dayDir := filepath.Dir(deviceDir)
	monthDir := filepath.Dir(dayDir)
	yearDir := filepath.Dir(monthDir)

	candidate := fmt.Sprintf("%s-%s-%s", filepath.Base(yearDir), filepath.Base(monthDir), filepath.Base(dayDir))

	parsed, err := time.Parse("2006-01-02", candidate)
	if err != nil {
		return ""
	}

	return parsed.Format("2006-01-02")
}
