package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/logger"
)

// LockFilename marks a scan in progress inside the bucket root to avoid
// parallel execution over the same data.
const LockFilename = "device-scan.lock"

// ErrScanInProgress indicates another scan currently holds the bucket lock.
var ErrScanInProgress = errors.New("another scan is already running")

// runLock is a held bucket lock.
type runLock struct {
	// path is the lock file location.
	path string
}

// acquireRunLock takes the bucket lock, recovering locks left behind by
// crashed runs. The lock file records the holder's PID; the holder is
// considered alive only while a process with that PID and this executable's
// name exists.
func acquireRunLock(ctx context.Context, bucketPath string) (*runLock, error) {
	path := filepath.Join(bucketPath, LockFilename)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		pid, parseErr := strconv.Atoi(strings.TrimSpace(string(contents)))
		if parseErr == nil && isScannerAlive(pid) {
			return nil, fmt.Errorf("%w: held by PID %d", ErrScanInProgress, pid)
		}

		logger.InfoKV(ctx, "Removing stale scan lock", "path", path)

		if err = os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale scan lock: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No lock, continue.
	default:
		return nil, fmt.Errorf("read scan lock: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrScanInProgress
		}

		return nil, fmt.Errorf("create scan lock: %w", err)
	}

	if _, err = file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return nil, fmt.Errorf("write scan lock: %w", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("close scan lock: %w", err)
	}

	return &runLock{path: path}, nil
}

// release removes the lock file. Failures are logged, not returned: the scan
// itself already finished.
func (l *runLock) release(ctx context.Context) {
	if err := os.Remove(l.path); err != nil {
		logger.WarnKV(ctx, "Unable to remove scan lock", "path", l.path, "error", err)
	}
}

// isScannerAlive reports whether a process with the given PID exists and
// runs the same executable as this process. Other processes mean the PID was
// recycled and the lock is stale.
func isScannerAlive(pid int) bool {
	if pid == os.Getpid() {
		return true
	}

	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return false
	}

	return process.Executable() == currentExecutable()
}

// currentExecutable returns the base name of the running binary.
func currentExecutable() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Base(exe)
	}

	return filepath.Base(os.Args[0])
}
