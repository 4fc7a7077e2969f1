package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for every file path the toolkit touches
type Paths struct {
	Root         string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	ChartsDir    string
	LogsDir      string
}

// rootMarkers identify a project root when walking up from the working directory
var rootMarkers = []string{
	filepath.Join("data", "raw"),
	"go.mod",
}

// GetPaths resolves the application paths from the configured layout.
// The root is PathsConfig.Root, else $EDA_ROOT, else the nearest ancestor of
// the working directory holding data/raw or go.mod, else the working
// directory itself.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(root, dir)
	}

	return &Paths{
		Root:         root,
		RawDir:       resolve(cfg.RawDir, DefaultRawDir),
		ProcessedDir: resolve(cfg.ProcessedDir, DefaultProcessedDir),
		ReportsDir:   resolve(cfg.ReportsDir, DefaultReportsDir),
		ChartsDir:    resolve(cfg.ChartsDir, DefaultChartsDir),
		LogsDir:      resolve(cfg.LogsDir, DefaultLogsDir),
	}, nil
}

// PathsAt resolves the default layout under root
func PathsAt(root string) (*Paths, error) {
	return GetPaths(PathsConfig{Root: root})
}

func resolveRoot(configured string) (string, error) {
	if configured == "" {
		configured = os.Getenv(RootEnv)
	}
	if configured != "" {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("failed to resolve root %s: %w", configured, err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, ok := FindProjectRoot(wd); ok {
		return root, nil
	}
	return wd, nil
}

// FindProjectRoot walks up from start looking for a directory that holds
// data/raw or go.mod
func FindProjectRoot(start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		for _, marker := range rootMarkers {
			if FileExists(filepath.Join(dir, marker)) {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// EnsureDirectories creates all output directories if they don't exist.
// The raw directory is input only and is not created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ProcessedDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetRawPath returns the path of a raw dataset file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetProcessedPath returns the path of a processed table
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path for a rendered chart
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// RelativeToRoot shortens path for display; paths outside the root are
// returned unchanged.
func (p *Paths) RelativeToRoot(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.String("root", p.Root),
		slog.Group("directories",
			slog.String("raw", p.RawDir),
			slog.Bool("raw_exists", FileExists(p.RawDir)),
			slog.String("processed", p.ProcessedDir),
			slog.String("reports", p.ReportsDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		))
}
