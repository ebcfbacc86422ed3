package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fedexist/empatica-challenge/internal/alert"
	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/domain/health"
	"github.com/fedexist/empatica-challenge/internal/logger"
	"github.com/fedexist/empatica-challenge/internal/pipeline"
	"github.com/fedexist/empatica-challenge/internal/repository/report"
	"github.com/fedexist/empatica-challenge/internal/repository/samples"
)

// Options controls the device-scan run and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// BucketPath provides an optional bucket root override.
	BucketPath string
	// Workers provides an optional worker cap override.
	Workers int
	// Days lists the days to scan as YYYY-MM-DD. Empty means yesterday.
	Days []string
}

// dayLayout is the canonical day format accepted on the command line.
const dayLayout = "2006-01-02"

// errInvalidDay is returned when a requested day is not a YYYY-MM-DD date.
var errInvalidDay = errors.New("invalid day")

// Service evaluates the devices recorded on a day and dispatches the results
// to the alert sink and report stores.
type Service struct {
	// repo supplies device listings and raw streams.
	repo samples.Repository
	// thresholds parameterizes the malfunction rules.
	thresholds pipeline.Thresholds
	// sink receives alerts for faulty devices.
	sink alert.Sink
	// stores receive the finished day report.
	stores []report.Store
	// workers caps concurrent device evaluations. Zero means one per device.
	workers int

	// now and newID are overridable for tests.
	now   func() time.Time
	newID func() string
}

// NewService wires a scan service from its dependencies.
func NewService(repo samples.Repository, thresholds pipeline.Thresholds, sink alert.Sink, stores []report.Store, workers int) *Service {
	return &Service{
		repo:       repo,
		thresholds: thresholds,
		sink:       sink,
		stores:     stores,
		workers:    workers,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Run loads configuration, locks the bucket and scans every requested day.
// Days without data are skipped with a notice; any other per-day failure is
// collected and reported after all days were attempted.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "device-scan")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line overrides.
	if opts.BucketPath != "" {
		cfg.BucketPath = opts.BucketPath
	}

	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	days, err := normalizeDays(opts.Days, time.Now())
	if err != nil {
		return err
	}

	if _, err = os.Stat(cfg.BucketPath); err != nil {
		return fmt.Errorf("bucket %s: %w", cfg.BucketPath, err)
	}

	lock, err := acquireRunLock(ctx, cfg.BucketPath)
	if err != nil {
		return fmt.Errorf("acquire scan lock: %w", err)
	}

	defer lock.release(ctx)

	// The console sink is always on; Kafka joins it when configured.
	sinks := alert.MultiSink{alert.NewConsoleSink(os.Stdout)}

	if cfg.Alerts.Kafka != nil {
		kafkaSink := alert.NewKafkaSink(cfg.Alerts.Kafka)

		defer func() {
			if closeErr := kafkaSink.Close(); closeErr != nil {
				logger.WarnKV(ctx, "Unable to close Kafka sink", "error", closeErr)
			}
		}()

		sinks = append(sinks, kafkaSink)
	}

	var stores []report.Store

	if cfg.Reports.Dir != "" {
		stores = append(stores, report.NewFileStore(cfg.Reports.Dir))
	}

	if cfg.Reports.Redis != nil {
		client := report.NewRedisClient(cfg.Reports.Redis)

		defer func() {
			_ = client.Close()
		}()

		stores = append(stores, report.NewRedisStore(client, cfg.Reports.Redis.TTL))
	}

	svc := NewService(
		samples.NewBucketRepository(cfg.BucketPath, cfg.StreamTemplate()),
		cfg.PipelineThresholds(),
		sinks,
		stores,
		cfg.Workers,
	)

	logger.InfoKV(ctx, "Scan started", "bucket", cfg.BucketPath, "days", strings.Join(days, ", "))

	var errs []error

	for _, day := range days {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		if _, err := svc.ScanDay(ctx, day); err != nil {
			if errors.Is(err, samples.ErrNoData) {
				logger.Infof(ctx, "No data available for date %s", day)
				continue
			}

			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ScanDay evaluates every device recorded on the day and saves the report.
// Device failures are isolated into unable-to-evaluate entries; only report
// persistence failures surface as errors alongside the report.
func (s *Service) ScanDay(ctx context.Context, day string) (*health.ScanReport, error) {
	ctx = logger.WithKV(ctx, "day", day)
	started := s.now().UTC()

	devices, err := s.repo.ListDevices(ctx, day)
	if err != nil {
		return nil, err
	}

	if len(devices) == 0 {
		logger.Warn(ctx, "No devices available")
	}

	results := s.evaluateAll(ctx, day, devices)

	scanReport := &health.ScanReport{
		Day:        day,
		StartedAt:  started,
		FinishedAt: s.now().UTC(),
		Devices:    results,
	}

	healthy, faulty, unable := scanReport.Counts()
	logger.InfoKV(ctx, "Day scanned",
		"devices", len(results),
		"healthy", healthy,
		"faulty", faulty,
		"unable", unable,
		"duration", scanReport.FinishedAt.Sub(scanReport.StartedAt).String(),
	)

	var errs []error

	for _, store := range s.stores {
		if err := store.SaveScanReport(ctx, scanReport); err != nil {
			logger.ErrorKV(ctx, "Unable to save scan report", "error", err)
			errs = append(errs, err)
		}
	}

	return scanReport, errors.Join(errs...)
}

// evaluateAll runs the worker pool over the day's devices. Every device ends
// up with exactly one report at its own listing index.
func (s *Service) evaluateAll(ctx context.Context, day string, devices []string) []health.DeviceReport {
	results := make([]health.DeviceReport, len(devices))

	workers := s.workers
	if workers <= 0 || workers > len(devices) {
		workers = len(devices)
	}

	jobs := make(chan int)

	go func() {
		defer close(jobs)

		for i := range devices {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				results[i] = s.evaluateDevice(ctx, day, devices[i])
			}
		}()
	}

	wg.Wait()

	// Devices never dispatched because of cancellation still get an entry.
	for i := range results {
		if results[i].Device != "" {
			continue
		}

		message := "scan canceled before evaluation"
		if err := ctx.Err(); err != nil {
			message = fmt.Sprintf("%s: %v", message, err)
		}

		results[i] = health.DeviceReport{
			Device:       devices[i],
			Day:          day,
			EvaluationID: s.newID(),
			Outcome:      health.OutcomeUnable,
			Error:        message,
		}
	}

	return results
}

// evaluateDevice loads one device's streams and judges them. All failures
// collapse into an unable-to-evaluate report; nothing here may abort the
// sibling devices.
func (s *Service) evaluateDevice(ctx context.Context, day, device string) health.DeviceReport {
	ctx = logger.WithKV(ctx, "device", device)
	evaluationID := s.newID()

	deviceReport := health.DeviceReport{
		Device:       device,
		Day:          day,
		EvaluationID: evaluationID,
	}

	streams, err := s.repo.LoadStreams(ctx, day, device)
	if err != nil {
		logger.WarnKV(ctx, "Unable to load device streams", "error", err, "evaluation_id", evaluationID)

		deviceReport.Outcome = health.OutcomeUnable
		deviceReport.Error = err.Error()

		return deviceReport
	}

	verdict, err := pipeline.Evaluate(streams, s.thresholds)
	if err != nil {
		logger.WarnKV(ctx, "Unable to evaluate device", "error", err, "evaluation_id", evaluationID)

		deviceReport.Outcome = health.OutcomeUnable
		deviceReport.Error = err.Error()

		return deviceReport
	}

	deviceReport.Verdict = verdict

	if !verdict.IsFaulty {
		deviceReport.Outcome = health.OutcomeHealthy
		logger.InfoKV(ctx, "Device evaluated", "outcome", deviceReport.Outcome, "evaluation_id", evaluationID)

		return deviceReport
	}

	deviceReport.Outcome = health.OutcomeFaulty
	logger.InfoKV(ctx, "Device evaluated", "outcome", deviceReport.Outcome, "evaluation_id", evaluationID)

	if s.sink != nil {
		deviceAlert := health.Alert{
			Device:       device,
			Day:          day,
			EvaluationID: evaluationID,
			RaisedAt:     s.now().UTC(),
			Explanation:  verdict.Explanation,
		}

		// A failed alert does not change the verdict; the report still
		// records the device as faulty.
		if err := s.sink.Publish(ctx, deviceAlert); err != nil {
			logger.ErrorKV(ctx, "Unable to publish alert", "error", err, "evaluation_id", evaluationID)
		}
	}

	return deviceReport
}

// normalizeDays parses and canonicalizes the requested days, defaulting to
// yesterday when none are given.
func normalizeDays(days []string, now time.Time) ([]string, error) {
	if len(days) == 0 {
		return []string{now.AddDate(0, 0, -1).Format(dayLayout)}, nil
	}

	out := make([]string, 0, len(days))

	for _, day := range days {
		parsed, err := time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", errInvalidDay, day)
		}

		out = append(out, parsed.Format(dayLayout))
	}

	return out, nil
}
