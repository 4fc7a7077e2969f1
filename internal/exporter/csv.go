package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/files"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sheet is a summary that can be written as rows
type Sheet interface {
	Header() []string
	Records() [][]any
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths   *config.Paths
	manager *files.Manager
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		paths:   paths,
		manager: files.NewManager(paths, logger),
		logger:  logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// TableOptions configures WriteTable
type TableOptions struct {
	BOMPrefix bool
	// OmitHeader leaves out the column names row
	OmitHeader bool
}

// WriteCSV writes data to a CSV file with the given options and returns
// the resolved path. Files that are not appended to are replaced
// atomically.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	write := func(out io.Writer, withHeader bool) error {
		if options.BOMPrefix && withHeader {
			if _, err := out.Write(utf8BOM); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}
		writer := csv.NewWriter(out)
		if withHeader && len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	}

	if !options.Append {
		if err := files.WriteAtomic(fullPath, func(out io.Writer) error { return write(out, true) }); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", fullPath), err)
		}
		return fullPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create directory", err)
	}
	fresh := !config.FileExists(fullPath)
	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to open %s", fullPath), err)
	}
	if err := write(file, fresh); err != nil {
		_ = file.Close()
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", fullPath), err)
	}
	if err := file.Close(); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to close %s", fullPath), err)
	}
	return fullPath, nil
}

// AppendToCSV appends records to a CSV file. A new file gets the headers.
func (w *CSVWriter) AppendToCSV(filePath string, headers []string, records [][]string) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
		Append:  true,
	})
}

// WriteTable writes every row of t. List cells are written as list
// literals and absent cells as empty fields.
func (w *CSVWriter) WriteTable(filePath string, t domain.Table, opts TableOptions) (string, error) {
	stream, err := w.CreateStreamWriter(filePath, t.ColumnNames(), StreamOptions{
		BOMPrefix:  opts.BOMPrefix,
		OmitHeader: opts.OmitHeader,
	})
	if err != nil {
		return "", err
	}

	cols := t.Columns()
	row := make([]domain.Value, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			row[j] = c.Values[i]
		}
		if err := stream.WriteValues(row); err != nil {
			stream.Abort()
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", i), err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", stream.Path()), err)
	}

	w.logger.Info("Table exported",
		slog.String("path", stream.Path()),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))
	return stream.Path(), nil
}

// WriteSheet writes a summary with its header
func (w *CSVWriter) WriteSheet(filePath string, s Sheet) (string, error) {
	records := s.Records()
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = formatRecord(r)
	}
	return w.WriteCSV(filePath, WriteOptions{Headers: s.Header(), Records: rows, BOMPrefix: true})
}

// StreamOptions configures CreateStreamWriter
type StreamOptions struct {
	BOMPrefix  bool
	OmitHeader bool
}

// StreamWriter provides streaming CSV writing for large datasets. The file
// appears at its path only once Close succeeds.
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	record []string
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, opts StreamOptions) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err)
	}
	s := &StreamWriter{path: fullPath, file: file, writer: csv.NewWriter(file)}

	if opts.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError("failed to write BOM", err)
		}
	}
	if !opts.OmitHeader && len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError("failed to write headers", err)
		}
	}
	return s, nil
}

// Path returns the final location of the file
func (s *StreamWriter) Path() string {
	return s.path
}

// WriteValues writes a row of table cells
func (s *StreamWriter) WriteValues(values []domain.Value) error {
	if cap(s.record) < len(values) {
		s.record = make([]string, len(values))
	}
	s.record = s.record[:len(values)]
	for i, v := range values {
		s.record[i] = formatValue(v)
	}
	return s.writer.Write(s.record)
}

// Close flushes the stream and moves the file into place
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return err
	}
	if err := s.file.Close(); err != nil {
		_ = os.Remove(s.file.Name())
		return err
	}
	return os.Rename(s.file.Name(), s.path)
}

// Abort discards everything written so far
func (s *StreamWriter) Abort() {
	_ = s.file.Close()
	_ = os.Remove(s.file.Name())
}

// resolvePath places unprefixed relative paths in the reports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	return w.manager.ResolveUnder(filePath, w.paths.ReportsDir)
}
