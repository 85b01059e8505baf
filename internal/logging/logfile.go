package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logFilePrefix = "nightshift-"

// LogFile manages the lifetime of one log output destination. Runs driven by
// cron typically log to a file under a run directory; interactive runs log to
// stderr.
type LogFile struct {
	// Path is the opened file path, empty for stderr or discarded output.
	Path   string
	file   *os.File
	writer io.Writer
}

// OpenLogFile resolves the output selector to a writer:
//
//	"-"     stderr
//	"none"  discard
//	""      auto-generated file name under dir
//	path    the given path, absolute or relative to dir
func OpenLogFile(output, dir string) (*LogFile, error) {
	lf := &LogFile{}

	switch strings.ToLower(output) {
	case "none":
		lf.writer = io.Discard
		return lf, nil
	case "-":
		lf.writer = os.Stderr
		return lf, nil
	case "":
		lf.Path = filepath.Join(dir, logFileName(time.Now().UTC()))
	default:
		if filepath.IsAbs(output) {
			lf.Path = output
		} else {
			lf.Path = filepath.Join(dir, output)
		}
	}

	if err := os.MkdirAll(filepath.Dir(lf.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", filepath.Dir(lf.Path), err)
	}
	f, err := os.OpenFile(lf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", lf.Path, err)
	}
	lf.file = f
	lf.writer = f
	return lf, nil
}

// Writer returns the resolved log destination.
func (lf *LogFile) Writer() io.Writer { return lf.writer }

// Close closes the log file if one was opened.
func (lf *LogFile) Close() error {
	if lf.file != nil {
		return lf.file.Close()
	}
	return nil
}

// logFileName renders nightshift-YYYYMMDD-HHMMSS-sss.log in UTC.
func logFileName(t time.Time) string {
	return fmt.Sprintf("%s%s-%03d.log", logFilePrefix,
		t.Format("20060102-150405"), t.Nanosecond()/1_000_000)
}

// CleanupOldLogFiles removes auto-generated log files older than
// retentionDays from dir. Files that do not match the generated naming
// pattern are left alone. A retention of zero disables cleanup.
func CleanupOldLogFiles(dir string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading log directory %q: %w", dir, err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			// Removal failures are not fatal; the next run retries.
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}
