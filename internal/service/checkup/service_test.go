package checkup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
	"github.com/fedexist/empatica-challenge/internal/repository/samples"
)

// writeStream writes a single-column CSV stream file into dir.
func writeStream(t *testing.T, dir, name string, values []float64) {
	t.Helper()

	var sb strings.Builder
	for _, value := range values {
		fmt.Fprintf(&sb, "%g\n", value)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o600))
}

// repeat returns value repeated n times.
func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

// writeDevice creates a device directory with two seconds of raw-unit data
// at the reference 1/4/64 Hz rates. The temperature samples are given; the
// wrist stays on and the PPG stays flat.
func writeDevice(t *testing.T, parent, device string, temperature []float64) string {
	t.Helper()

	dir := filepath.Join(parent, device)
	require.NoError(t, os.MkdirAll(dir, 0o750))

	seconds := len(temperature) / 4
	writeStream(t, dir, samples.OnWristFilename, repeat(1, seconds))
	writeStream(t, dir, samples.TemperatureFilename, temperature)
	writeStream(t, dir, samples.PPGFilename, repeat(210.5, seconds*64))

	return dir
}

// TestRunHealthyDevice prints a healthy report and returns no error.
func TestRunHealthyDevice(t *testing.T) {
	t.Parallel()

	dir := writeDevice(t, t.TempDir(), "device_007", []float64{3100, 3101, 3100, 3102, 3101, 3100, 3101, 3100})

	var out bytes.Buffer
	err := Run(context.Background(), &Options{DeviceDir: dir, Out: &out})
	require.NoError(t, err)

	var deviceReport health.DeviceReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &deviceReport))
	require.Equal(t, "device_007", deviceReport.Device)
	require.Equal(t, health.OutcomeHealthy, deviceReport.Outcome)
	require.NotEmpty(t, deviceReport.EvaluationID)
	require.NotNil(t, deviceReport.Verdict)
	require.False(t, deviceReport.Verdict.IsFaulty)
}

// TestRunFaultyDevice prints the report and returns ErrDeviceFaulty.
func TestRunFaultyDevice(t *testing.T) {
	t.Parallel()

	// One spike beyond the 3700 raw-unit ceiling.
	dir := writeDevice(t, t.TempDir(), "device_013", []float64{3100, 3101, 4100, 3102, 3101, 3100, 3101, 3100})

	var out bytes.Buffer
	err := Run(context.Background(), &Options{DeviceDir: dir, Out: &out})
	require.ErrorIs(t, err, ErrDeviceFaulty)

	var deviceReport health.DeviceReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &deviceReport))
	require.Equal(t, health.OutcomeFaulty, deviceReport.Outcome)
	require.True(t, deviceReport.Verdict.IsFaulty)
	require.True(t, deviceReport.Verdict.Explanation.AnyViolated())
}

// TestRunUnreadableDevice fails without printing a report.
func TestRunUnreadableDevice(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "device_099")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	var out bytes.Buffer
	err := Run(context.Background(), &Options{DeviceDir: dir, Out: &out})
	require.ErrorIs(t, err, samples.ErrMissingStream)
	require.Zero(t, out.Len())
}

// TestRunInfersDayFromBucketPath fills the report day for bucket-shaped paths.
func TestRunInfersDayFromBucketPath(t *testing.T) {
	t.Parallel()

	dayDir := filepath.Join(t.TempDir(), "2023", "01", "29")
	dir := writeDevice(t, dayDir, "device_007", []float64{3100, 3101, 3100, 3102, 3101, 3100, 3101, 3100})

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &Options{DeviceDir: dir, Out: &out}))

	var deviceReport health.DeviceReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &deviceReport))
	require.Equal(t, "2023-01-29", deviceReport.Day)
}

// TestInferDay parses bucket layouts and rejects everything else.
func TestInferDay(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2023-01-29", inferDay(filepath.Join("bucket", "2023", "01", "29", "device_007")))
	require.Empty(t, inferDay(filepath.Join("tmp", "device_007")))
	require.Empty(t, inferDay(filepath.Join("bucket", "2023", "13", "41", "device_007")))
}
