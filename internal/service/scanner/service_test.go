package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
	"github.com/fedexist/empatica-challenge/internal/pipeline"
	"github.com/fedexist/empatica-challenge/internal/repository/report"
	"github.com/fedexist/empatica-challenge/internal/repository/samples"
)

// fakeRepository serves streams for a single day from memory.
type fakeRepository struct {
	day     string
	devices []string
	streams map[string]health.Streams
	errs    map[string]error
}

func (f *fakeRepository) ListDevices(_ context.Context, day string) ([]string, error) {
	if day != f.day {
		return nil, fmt.Errorf("%w: %s", samples.ErrNoData, day)
	}

	return append([]string(nil), f.devices...), nil
}

func (f *fakeRepository) LoadStreams(_ context.Context, _, device string) (health.Streams, error) {
	if err := f.errs[device]; err != nil {
		return health.Streams{}, err
	}

	return f.streams[device], nil
}

// collectSink records published alerts.
type collectSink struct {
	mu     sync.Mutex
	alerts []health.Alert
}

func (s *collectSink) Publish(_ context.Context, a health.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, a)

	return nil
}

// memStore records saved reports and optionally fails.
type memStore struct {
	mu      sync.Mutex
	reports []*health.ScanReport
	err     error
}

func (s *memStore) SaveScanReport(_ context.Context, report *health.ScanReport) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)

	return nil
}

// scanThresholds sizes the rules for the synthetic streams below.
func scanThresholds() pipeline.Thresholds {
	return pipeline.Thresholds{
		MinTemp:               30.0,
		MaxTemp:               40.0,
		TempStdOnMax:          10.0,
		PPGStdOnMax:           5.0,
		TempDecreaseTolerance: 0.1,
		PPGStdOffMax:          1.0,
	}
}

// wornStreams builds equal-rate streams for a device worn all day.
func wornStreams(temperature ...float64) health.Streams {
	onWrist := make([]float64, len(temperature))
	ppg := make([]float64, len(temperature))

	for i := range temperature {
		onWrist[i] = 1
		ppg[i] = 0.1
	}

	return health.Streams{
		OnWrist:     health.Stream{Kind: health.KindOnWrist, RateHz: 1, Values: onWrist},
		Temperature: health.Stream{Kind: health.KindTemperature, RateHz: 1, Values: temperature},
		PPG:         health.Stream{Kind: health.KindPPG, RateHz: 1, Values: ppg},
	}
}

// testRepository serves one healthy, one faulty and one unreadable device.
func testRepository() *fakeRepository {
	return &fakeRepository{
		day:     "2023-01-29",
		devices: []string{"device_001", "device_002", "device_003"},
		streams: map[string]health.Streams{
			"device_001": wornStreams(36.0, 36.1, 36.0),
			"device_002": wornStreams(36.0, 42.0, 36.0),
		},
		errs: map[string]error{
			"device_003": errors.New("io problem"),
		},
	}
}

// TestScanDayMixedOutcomes runs a day with a healthy, a faulty and an
// unreadable device: each gets its own outcome, only the faulty device is
// alerted and the report is saved.
func TestScanDayMixedOutcomes(t *testing.T) {
	t.Parallel()

	sink := &collectSink{}
	store := &memStore{}
	svc := NewService(testRepository(), scanThresholds(), sink, []report.Store{store}, 0)

	started := time.Date(2023, 1, 30, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return started }

	scanReport, err := svc.ScanDay(context.Background(), "2023-01-29")
	require.NoError(t, err)
	require.Len(t, scanReport.Devices, 3)

	healthy := scanReport.Devices[0]
	require.Equal(t, "device_001", healthy.Device)
	require.Equal(t, health.OutcomeHealthy, healthy.Outcome)
	require.NotNil(t, healthy.Verdict)
	require.Empty(t, healthy.Error)

	faulty := scanReport.Devices[1]
	require.Equal(t, "device_002", faulty.Device)
	require.Equal(t, health.OutcomeFaulty, faulty.Outcome)
	require.True(t, faulty.Verdict.IsFaulty)

	unable := scanReport.Devices[2]
	require.Equal(t, "device_003", unable.Device)
	require.Equal(t, health.OutcomeUnable, unable.Outcome)
	require.Nil(t, unable.Verdict)
	require.Contains(t, unable.Error, "io problem")

	// Evaluation IDs are unique across the day.
	ids := map[string]struct{}{}
	for _, device := range scanReport.Devices {
		require.NotEmpty(t, device.EvaluationID)
		ids[device.EvaluationID] = struct{}{}
	}
	require.Len(t, ids, 3)

	// Only the faulty device raised an alert.
	require.Len(t, sink.alerts, 1)
	require.Equal(t, "device_002", sink.alerts[0].Device)
	require.Equal(t, faulty.EvaluationID, sink.alerts[0].EvaluationID)
	require.True(t, sink.alerts[0].Explanation.AnyViolated())

	// The report went to the store.
	require.Len(t, store.reports, 1)
	require.Equal(t, scanReport, store.reports[0])
	require.Equal(t, started, scanReport.StartedAt)
}

// TestScanDayNoData surfaces the repository sentinel for a missing day.
func TestScanDayNoData(t *testing.T) {
	t.Parallel()

	svc := NewService(testRepository(), scanThresholds(), nil, nil, 0)

	scanReport, err := svc.ScanDay(context.Background(), "2023-01-30")
	require.ErrorIs(t, err, samples.ErrNoData)
	require.Nil(t, scanReport)
}

// TestScanDayWorkerCountInvariant checks a serial scan and a parallel scan
// produce the same outcomes.
func TestScanDayWorkerCountInvariant(t *testing.T) {
	t.Parallel()

	outcomes := func(workers int) []health.Outcome {
		svc := NewService(testRepository(), scanThresholds(), nil, nil, workers)

		scanReport, err := svc.ScanDay(context.Background(), "2023-01-29")
		require.NoError(t, err)

		out := make([]health.Outcome, 0, len(scanReport.Devices))
		for _, device := range scanReport.Devices {
			out = append(out, device.Outcome)
		}

		return out
	}

	require.Equal(t, outcomes(1), outcomes(3))
}

// TestScanDayStoreFailure keeps the report available even when saving fails.
func TestScanDayStoreFailure(t *testing.T) {
	t.Parallel()

	errStore := errors.New("store down")
	store := &memStore{err: errStore}
	svc := NewService(testRepository(), scanThresholds(), nil, []report.Store{store}, 0)

	scanReport, err := svc.ScanDay(context.Background(), "2023-01-29")
	require.ErrorIs(t, err, errStore)
	require.NotNil(t, scanReport)
	require.Len(t, scanReport.Devices, 3)
}

// TestScanDayEmptyDay reports a day with no devices as an empty report.
func TestScanDayEmptyDay(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{day: "2023-01-29"}
	store := &memStore{}
	svc := NewService(repo, scanThresholds(), nil, []report.Store{store}, 0)

	scanReport, err := svc.ScanDay(context.Background(), "2023-01-29")
	require.NoError(t, err)
	require.Empty(t, scanReport.Devices)
	require.Len(t, store.reports, 1)
}

// TestScanDayCanceledContext still yields one report entry per device.
func TestScanDayCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(testRepository(), scanThresholds(), nil, nil, 1)

	scanReport, err := svc.ScanDay(ctx, "2023-01-29")
	require.NoError(t, err)
	require.Len(t, scanReport.Devices, 3)

	for _, device := range scanReport.Devices {
		require.NotEmpty(t, device.Outcome)
		require.NotEmpty(t, device.EvaluationID)
	}
}

// TestNormalizeDays checks defaulting to yesterday and canonical parsing.
func TestNormalizeDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 1, 30, 15, 4, 5, 0, time.UTC)

	days, err := normalizeDays(nil, now)
	require.NoError(t, err)
	require.Equal(t, []string{"2023-01-29"}, days)

	days, err = normalizeDays([]string{"2021-02-02", "2021-02-03"}, now)
	require.NoError(t, err)
	require.Equal(t, []string{"2021-02-02", "2021-02-03"}, days)

	_, err = normalizeDays([]string{"02/03/2021"}, now)
	require.ErrorIs(t, err, errInvalidDay)
}
