package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloo-solutions/communityos/internal/domain"
)

// DefaultBackupDir is where local backups are written.
const DefaultBackupDir = ".backups"

// ErrInvalidDataset is returned by Parse when validation fails.
var ErrInvalidDataset = errors.New("invalid dataset")

// Parse validates data and decodes it into records.
func Parse(data []byte) ([]Record, *Report, error) {
	report := Validate(data)
	if !report.Valid() {
		return nil, report, fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(report.Errors, "; "))
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, report, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return records, report, nil
}

// Profiles parses data and maps every record to a profile.
func Profiles(data []byte) ([]*domain.Profile, error) {
	records, _, err := Parse(data)
	if err != nil {
		return nil, err
	}
	profiles := make([]*domain.Profile, len(records))
	for i, r := range records {
		profiles[i] = r.ToProfile()
	}
	return profiles, nil
}

// Encode writes profiles as an indented seed file.
func Encode(w io.Writer, profiles []*domain.Profile) error {
	records := make([]Record, len(profiles))
	for i, p := range profiles {
		records[i] = FromProfile(p)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// BackupName returns "<base>.<timestamp>.backup" with a filesystem-safe timestamp.
func BackupName(path string, now time.Time) string {
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s.%s.backup", filepath.Base(path), ts)
}

// BackupFile copies path into dir and returns the backup path.
func BackupFile(path, dir string, now time.Time) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open dataset: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	dst := filepath.Join(dir, BackupName(path, now))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return dst, nil
}
