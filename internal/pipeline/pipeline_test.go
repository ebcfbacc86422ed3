package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// testThresholds returns thresholds sized for the small synthetic scenarios
// below (physiological units, not raw sensor units).
func testThresholds() Thresholds {
	return Thresholds{
		MinTemp:               30.0,
		MaxTemp:               40.0,
		TempStdOnMax:          10.0,
		PPGStdOnMax:           5.0,
		TempDecreaseTolerance: 0.1,
		PPGStdOffMax:          1.0,
	}
}

// equalRateStreams builds a Streams value where all three streams share one
// rate, so alignment is a pure zip with no upsampling.
func equalRateStreams(onWrist, temperature, ppg []float64) health.Streams {
	return health.Streams{
		OnWrist:     health.Stream{Kind: health.KindOnWrist, RateHz: 1, Values: onWrist},
		Temperature: health.Stream{Kind: health.KindTemperature, RateHz: 1, Values: temperature},
		PPG:         health.Stream{Kind: health.KindPPG, RateHz: 1, Values: ppg},
	}
}

// TestEvaluate_HealthyDay covers a worn device with in-range, low-variance
// readings: no rule fires and the verdict is not faulty.
func TestEvaluate_HealthyDay(t *testing.T) {
	t.Parallel()

	streams := equalRateStreams(
		[]float64{1, 1, 1},
		[]float64{36.0, 36.1, 36.0},
		[]float64{0.1, 0.1, 0.1},
	)

	verdict, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)
	require.False(t, verdict.IsFaulty)

	// The single worn segment is still fully reported.
	require.Len(t, verdict.Explanation.WristOn, 1)
	require.Empty(t, verdict.Explanation.WristOff)

	result := verdict.Explanation.WristOn["segment_0"]
	require.False(t, result[RuleTemperatureOutOfRange])
	require.False(t, result[RuleTemperatureHighVariance])
	require.False(t, result[RulePPGHighVariance])
}

// TestEvaluate_TemperatureOutOfRange covers a worn segment with a spike past
// MaxTemp: the range rule fires and the device-day is faulty.
func TestEvaluate_TemperatureOutOfRange(t *testing.T) {
	t.Parallel()

	streams := equalRateStreams(
		[]float64{1, 1, 1},
		[]float64{36.0, 42.0, 36.0},
		[]float64{0.1, 0.1, 0.1},
	)

	verdict, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)
	require.True(t, verdict.IsFaulty)
	require.True(t, verdict.Explanation.WristOn["segment_0"][RuleTemperatureOutOfRange])
}

// TestEvaluate_TemperatureNotDecreasing covers a taken-off segment where the
// temperature steps up: the monotonicity rule fires.
func TestEvaluate_TemperatureNotDecreasing(t *testing.T) {
	t.Parallel()

	streams := equalRateStreams(
		[]float64{0, 0, 0, 0},
		[]float64{30.0, 31.0, 29.0, 28.0},
		[]float64{0.1, 0.1, 0.1, 0.1},
	)

	verdict, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)
	require.True(t, verdict.IsFaulty)
	require.Empty(t, verdict.Explanation.WristOn)
	require.True(t, verdict.Explanation.WristOff["segment_0"][RuleTemperatureNotDecreasing])
}

// TestEvaluate_EmptyStreamIsNotHealthy ensures a missing stream surfaces as
// ErrInsufficientData rather than a clean verdict.
func TestEvaluate_EmptyStreamIsNotHealthy(t *testing.T) {
	t.Parallel()

	streams := equalRateStreams(
		[]float64{1, 1, 1},
		nil,
		[]float64{0.1, 0.1, 0.1},
	)

	verdict, err := Evaluate(streams, testThresholds())
	require.ErrorIs(t, err, ErrInsufficientData)
	require.ErrorContains(t, err, "temperature")
	require.Nil(t, verdict)
}

// TestEvaluate_InvalidThresholds ensures threshold validation runs before any
// signal work and wraps ErrConfiguration.
func TestEvaluate_InvalidThresholds(t *testing.T) {
	t.Parallel()

	bad := testThresholds()
	bad.PPGStdOffMax = bad.PPGStdOnMax + 1

	streams := equalRateStreams([]float64{1}, []float64{36.0}, []float64{0.1})

	verdict, err := Evaluate(streams, bad)
	require.ErrorIs(t, err, ErrConfiguration)
	require.Nil(t, verdict)
}

// TestEvaluate_Idempotent re-runs the pipeline on identical input and
// expects an identical verdict: the computation is pure.
func TestEvaluate_Idempotent(t *testing.T) {
	t.Parallel()

	streams := equalRateStreams(
		[]float64{1, 1, 0, 0, 1, 0},
		[]float64{36.0, 36.5, 33.0, 32.0, 36.2, 31.0},
		[]float64{0.2, 0.3, 0.1, 0.1, 0.25, 0.1},
	)

	first, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)

	second, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)

	require.Equal(t, first, second)
}

// TestEvaluate_MixedDayWithUpsampling runs the full pipeline at the
// reference deployment rates (1/4/64 Hz) and checks that faults found in a
// slow stream survive resampling.
func TestEvaluate_MixedDayWithUpsampling(t *testing.T) {
	t.Parallel()

	// Two seconds of recording: worn during the first second, off during
	// the second. The temperature rises in the off period.
	ppg := make([]float64, 128)
	for i := range ppg {
		ppg[i] = 0.1
	}

	streams := health.Streams{
		OnWrist:     health.Stream{Kind: health.KindOnWrist, RateHz: 1, Values: []float64{1, 0}},
		Temperature: health.Stream{Kind: health.KindTemperature, RateHz: 4, Values: []float64{36, 36, 36, 36, 33, 34, 33, 32}},
		PPG:         health.Stream{Kind: health.KindPPG, RateHz: 64, Values: ppg},
	}

	verdict, err := Evaluate(streams, testThresholds())
	require.NoError(t, err)
	require.True(t, verdict.IsFaulty)

	require.Len(t, verdict.Explanation.WristOn, 1)
	require.Len(t, verdict.Explanation.WristOff, 1)

	// The off segment starts at the common-rate index 64.
	offResult, ok := verdict.Explanation.WristOff["segment_64"]
	require.True(t, ok)
	require.True(t, offResult[RuleTemperatureNotDecreasing])

	// The worn second stays clean.
	require.False(t, verdict.Explanation.WristOn["segment_0"].AnyViolated())
}
