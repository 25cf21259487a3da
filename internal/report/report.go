package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

const suffix = "_report.pdf"

// Filename derives the local file name for a dataset's report:
// "<name without .csv>_report.pdf".
func Filename(name string) string {
	base := dataset.Stem(name)
	if base == "" {
		base = "dataset"
	}
	return base + suffix
}

// Save streams r into dir/Filename(name) through a temp file and renames it
// into place. It returns the final path.
func Save(dir, name string, r io.Reader) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir report dir: %w", err)
	}
	path := filepath.Join(dir, Filename(name))
	tmp := filepath.Join(dir, "."+uuid.NewString()+".part")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("atomic rename: %w", err)
	}
	return path, nil
}
