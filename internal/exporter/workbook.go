package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/files"
)

const maxSheetName = 31

// NamedSheet is one worksheet of an exported workbook
type NamedSheet struct {
	Name  string
	Sheet Sheet
}

// WorkbookExporter writes summaries into xlsx workbooks
type WorkbookExporter struct {
	paths   *config.Paths
	manager *files.Manager
	logger  *slog.Logger
}

// NewWorkbookExporter creates an exporter writing under the reports directory
func NewWorkbookExporter(paths *config.Paths, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{
		paths:   paths,
		manager: files.NewManager(paths, logger),
		logger:  logger.With(slog.String("component", "workbook_exporter")),
	}
}

// ExportSummaries writes one sheet per summary, in order, and returns the
// workbook path. Relative paths are placed in the reports directory.
// Sheet names are cleaned of characters Excel rejects, cut to 31
// characters and made unique.
func (e *WorkbookExporter) ExportSummaries(path string, sheets []NamedSheet) (string, error) {
	if len(sheets) == 0 {
		return "", apperrors.NewAppValidationError("no summaries to export")
	}
	fullPath := e.manager.ResolveUnder(path, e.paths.ReportsDir)
	if filepath.Ext(fullPath) == "" {
		fullPath += ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return "", apperrors.NewStorageError("failed to create header style", err)
	}

	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := uniqueSheetName(s.Name, i, used)
		if i == 0 {
			err = f.SetSheetName("Sheet1", name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to create sheet %s", name), err)
		}
		if err := writeSheet(f, name, s.Sheet, header); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write sheet %s", name), err)
		}
	}
	f.SetActiveSheet(0)

	if err := files.WriteAtomic(fullPath, func(w io.Writer) error {
		return f.Write(w)
	}); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to save %s", fullPath), err)
	}

	e.logger.Info("Summaries exported",
		slog.String("path", e.paths.RelativeToRoot(fullPath)),
		slog.Int("sheets", len(sheets)))
	return fullPath, nil
}

func writeSheet(f *excelize.File, name string, s Sheet, headerStyle int) error {
	header := s.Header()
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &cells); err != nil {
		return err
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	width := make([]int, len(header))
	for i, h := range header {
		width[i] = utf8.RuneCountInString(h)
	}
	for r, record := range s.Records() {
		row := make([]interface{}, len(record))
		for c, v := range record {
			row[c] = v
			if c < len(width) {
				if n := utf8.RuneCountInString(formatCell(v)); n > width[c] {
					width[c] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	for c, w := range width {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(min(w, 60)+2)); err != nil {
			return err
		}
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func uniqueSheetName(name string, index int, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = fmt.Sprintf("sheet%d", index+1)
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
