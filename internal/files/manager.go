package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
)

// Manager resolves project-relative paths and writes files safely
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "file_manager"))}
}

// ResolveUnder maps a path with a raw/, processed/, reports/, charts/ or
// logs/ prefix onto the configured directory. Other relative paths are
// joined to dir; absolute paths are returned unchanged.
func (m *Manager) ResolveUnder(path, dir string) string {
	if filepath.IsAbs(path) {
		return path
	}

	resolved := m.resolvePrefixed(filepath.ToSlash(path))
	if resolved == "" {
		resolved = filepath.Join(dir, path)
	}
	m.logger.Debug("Path resolved", slog.String("path", path), slog.String("full_path", resolved))
	return resolved
}

func (m *Manager) resolvePrefixed(slashed string) string {
	switch {
	case strings.HasPrefix(slashed, "raw/"):
		return m.paths.GetRawPath(strings.TrimPrefix(slashed, "raw/"))
	case strings.HasPrefix(slashed, "processed/"):
		return m.paths.GetProcessedPath(strings.TrimPrefix(slashed, "processed/"))
	case strings.HasPrefix(slashed, "charts/"):
		return m.paths.GetChartPath(strings.TrimPrefix(slashed, "charts/"))
	case strings.HasPrefix(slashed, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(slashed, "reports/"))
	case strings.HasPrefix(slashed, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(slashed, "logs/"))
	default:
		return ""
	}
}

// WriteAtomic writes a file through fn into a temporary sibling and renames
// it into place, so readers never observe a partial file. Parent
// directories are created as needed.
func WriteAtomic(path string, fn func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
