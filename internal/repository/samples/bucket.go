package samples

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Repository lists the devices recorded on a day and loads their raw streams.
type Repository interface {
	ListDevices(ctx context.Context, day string) ([]string, error)
	LoadStreams(ctx context.Context, day, device string) (health.Streams, error)
}

// Stream filenames inside a device directory.
const (
	// OnWristFilename holds the wrist-contact samples.
	OnWristFilename = "on_wrist.csv"
	// TemperatureFilename holds the temperature samples.
	TemperatureFilename = "temperature.csv"
	// PPGFilename holds the optical pulse samples.
	PPGFilename = "ppg.csv"
)

var (
	// ErrNoData is returned when the bucket has no directory for the day.
	ErrNoData = errors.New("no samples recorded for day")
	// ErrMissingStream is returned when a device directory lacks a stream file.
	ErrMissingStream = errors.New("missing stream file")

	// deviceDirPattern matches the device directories inside a day directory.
	deviceDirPattern = regexp.MustCompile(`^device_\d{3}$`)
)

// BucketRepository reads streams from a filesystem bucket.
type BucketRepository struct {
	// root is the bucket root directory.
	root string
	// template carries the configured per-stream rates.
	template health.Streams
}

// NewBucketRepository creates a repository over the bucket root. The template
// supplies the sample rate of each stream; loaded values are filled into it.
func NewBucketRepository(root string, template health.Streams) *BucketRepository {
	return &BucketRepository{
		root:     filepath.Clean(root),
		template: template,
	}
}

// ListDevices returns the device directory names recorded for the day,
// sorted lexicographically. A day without a directory yields ErrNoData.
func (r *BucketRepository) ListDevices(_ context.Context, day string) ([]string, error) {
	entries, err := os.ReadDir(r.dayDir(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, day)
		}

		return nil, fmt.Errorf("read day directory: %w", err)
	}

	var devices []string

	for _, entry := range entries {
		if entry.IsDir() && deviceDirPattern.MatchString(entry.Name()) {
			devices = append(devices, entry.Name())
		}
	}

	return devices, nil
}

// LoadStreams reads the three stream files of a device recorded on the day.
func (r *BucketRepository) LoadStreams(_ context.Context, day, device string) (health.Streams, error) {
	return LoadDir(filepath.Join(r.dayDir(day), device), r.template)
}

// dayDir maps a canonical YYYY-MM-DD day onto the bucket directory layout.
func (r *BucketRepository) dayDir(day string) string {
	return filepath.Join(r.root, filepath.FromSlash(strings.ReplaceAll(day, "-", "/")))
}

// LoadDir reads the three stream files from a device directory into a copy
// of the template. A missing file is reported as ErrMissingStream; the
// pipeline later decides what empty streams mean.
func LoadDir(dir string, template health.Streams) (health.Streams, error) {
	streams := template

	files := []struct {
		name   string
		values *[]float64
	}{
		{OnWristFilename, &streams.OnWrist.Values},
		{TemperatureFilename, &streams.Temperature.Values},
		{PPGFilename, &streams.PPG.Values},
	}

	for _, file := range files {
		values, err := readColumn(filepath.Join(dir, file.name))
		if err != nil {
			return health.Streams{}, fmt.Errorf("device directory %s: %w", dir, err)
		}

		*file.values = values
	}

	return streams, nil
}

// readColumn parses a headerless single-column CSV of float samples.
func readColumn(path string) ([]float64, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingStream, filepath.Base(path))
		}

		return nil, fmt.Errorf("open stream file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 1

	var (
		values []float64
		line   int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}

		line++

		value, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), line, err)
		}

		values = append(values, value)
	}

	return values, nil
}
