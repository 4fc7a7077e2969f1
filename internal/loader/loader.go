package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/files"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/validation"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Encodings reported by Decode
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

const ctxCheckInterval = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads raw CSV files from the raw directory and processed
// workbooks from the processed directory.
type Loader struct {
	paths     *config.Paths
	discovery *files.Discovery
	validator *validation.FileValidator
	logger    *slog.Logger
}

// New creates a loader over paths. A nil logger uses slog.Default.
func New(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:     paths,
		discovery: files.NewDiscovery(""),
		validator: validation.NewFileValidator(logger),
		logger:    logger.With(slog.String("component", "loader")),
	}
}

// Paths returns the directory layout the loader reads from
func (l *Loader) Paths() *config.Paths {
	return l.paths
}

// Dataset holds both raw tables
type Dataset struct {
	Recipes      domain.Table
	Interactions domain.Table
}

// LoadRecipes reads the recipes file from the raw directory. An empty name
// means config.DefaultRecipesFile.
func (l *Loader) LoadRecipes(ctx context.Context, name string) (domain.Table, error) {
	if name == "" {
		name = config.DefaultRecipesFile
	}
	return l.loadRaw(ctx, name)
}

// LoadInteractions reads the interactions file from the raw directory. An
// empty name means config.DefaultInteractionsFile.
func (l *Loader) LoadInteractions(ctx context.Context, name string) (domain.Table, error) {
	if name == "" {
		name = config.DefaultInteractionsFile
	}
	return l.loadRaw(ctx, name)
}

// LoadAll reads the default recipes and interactions files concurrently
func (l *Loader) LoadAll(ctx context.Context) (*Dataset, error) {
	return l.LoadFiles(ctx, config.DefaultRecipesFile, config.DefaultInteractionsFile)
}

// LoadFiles reads the named recipes and interactions files concurrently.
// The first failure cancels the other read.
func (l *Loader) LoadFiles(ctx context.Context, recipesFile, interactionsFile string) (*Dataset, error) {
	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := l.LoadRecipes(gctx, recipesFile)
		ds.Recipes = t
		return err
	})
	g.Go(func() error {
		t, err := l.LoadInteractions(gctx, interactionsFile)
		ds.Interactions = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (l *Loader) loadRaw(ctx context.Context, name string) (domain.Table, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = l.paths.GetRawPath(name)
	}
	if config.FileExists(path) {
		return l.ReadCSV(ctx, path)
	}

	csvs, _ := l.discovery.FindCSVFiles(l.paths.RawDir)
	return domain.Table{}, l.ensureExists(path, l.paths.RawDir, fileNames(csvs))
}

func fileNames(infos []files.FileInfo) []string {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}

func (l *Loader) ensureExists(path, dir string, available []string) error {
	if config.FileExists(path) {
		return nil
	}
	l.logger.Error("File not found",
		slog.String("path", path),
		slog.String("directory", dir),
		slog.Any("available", available))
	return apperrors.NewNotFoundError(fmt.Sprintf("file %s", path)).
		WithContext("path", path).
		WithContext("directory", dir).
		WithContext("available", available)
}

// ReadCSV reads any CSV file into a raw table
func (l *Loader) ReadCSV(ctx context.Context, path string) (domain.Table, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	text, encoding, err := Decode(data)
	if err != nil {
		return domain.Table{}, apperrors.NewEncodingError(fmt.Sprintf("failed to decode %s", path), err)
	}
	if encoding != EncodingUTF8 {
		l.logger.WarnContext(ctx, "File is not valid UTF-8, decoded as Latin-1", slog.String("path", path))
	}

	t, err := parseCSV(ctx, bytes.NewReader(text))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Table{}, err
		}
		return domain.Table{}, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err).
			WithContext("path", path)
	}

	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()),
		slog.String("encoding", encoding),
		slog.Duration("duration", time.Since(start)))
	return t, nil
}

// Decode returns data as UTF-8 with any byte order mark removed. Input that
// is not valid UTF-8 is decoded as Latin-1.
func Decode(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", err
	}
	return out, EncodingLatin1, nil
}

func parseCSV(ctx context.Context, r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, errors.New("file is empty")
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}
	names := dedupeHeader(header)

	values := make([][]domain.Value, len(names))
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, err
		}
		for j, field := range record {
			values[j] = append(values[j], rawCell(field))
		}
	}

	cols := make([]domain.Column, len(names))
	for j, name := range names {
		cols[j] = domain.Column{Name: name, Type: domain.ColumnRaw, Values: values[j]}
		if cols[j].Values == nil {
			cols[j].Values = []domain.Value{}
		}
	}
	return domain.NewTable(cols...)
}

// naTokens are the field values read as missing, the same defaults pandas
// read_csv uses
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func rawCell(field string) domain.Value {
	if _, ok := naTokens[field]; ok {
		return domain.Absent()
	}
	return domain.String(field)
}

// dedupeHeader renames repeated column names to name.1, name.2 and so on
func dedupeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		for seen[name] > 0 {
			name = h + "." + strconv.Itoa(seen[h])
			seen[h]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}

// SanityCheck writes the resolved root and raw directory with its content
func (l *Loader) SanityCheck(w io.Writer) {
	raw := l.paths.RawDir
	fmt.Fprintf(w, "ROOT: %s\n", l.paths.Root)
	fmt.Fprintf(w, "RAW : %s  exists: %t\n", raw, config.FileExists(raw))
	fmt.Fprintln(w, "RAW CONTENTS:")
	for _, name := range l.discovery.ListNames(raw) {
		fmt.Fprintf(w, "  - %s\n", name)
	}
	fmt.Fprintln(w)
}
