package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// Store persists a finished scan report.
type Store interface {
	SaveScanReport(ctx context.Context, report *health.ScanReport) error
}

var (
	// errReportIsNotSet is returned when a nil report is provided.
	errReportIsNotSet = errors.New("report is not set")
	// errDayRequired is returned when the report carries no day.
	errDayRequired = errors.New("report day must be set")
)

// FileStore writes scan reports as JSON files into a directory.
type FileStore struct {
	// dir is the report directory, created on first save.
	dir string
	// mu protects concurrent saves into the directory.
	mu sync.Mutex
}

// NewFileStore creates a store that writes reports under the provided directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir: filepath.Clean(dir),
	}
}

// SaveScanReport writes the report to <dir>/scan-report-<day>.json.
func (s *FileStore) SaveScanReport(_ context.Context, report *health.ScanReport) error {
	if err := checkReport(report); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("scan-report-%s.json", report.Day))
	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// checkReport rejects reports that cannot be keyed by day.
func checkReport(report *health.ScanReport) error {
	if report == nil {
		return errReportIsNotSet
	}

	if report.Day == "" {
		return errDayRequired
	}

	return nil
}
