package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/files"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Workbook layout of processed tables
const (
	DataSheet    = "data"
	SchemaSheet  = "schema"
	// OverflowSheet holds cells longer than excelize.TotalCellChars, split
	// into chunks across the row
	OverflowSheet = "overflow"
	WorkbookExt  = ".xlsx"
	defaultSheet = "Sheet1"
)

// DefaultSafeListColumns are re-normalised by LoadProcessedSafe
func DefaultSafeListColumns() []string {
	return []string{domain.RecipeTags, domain.RecipeIngredients, domain.RecipeSteps}
}

func workbookName(name string) string {
	if strings.EqualFold(filepath.Ext(name), WorkbookExt) {
		return name
	}
	return name + WorkbookExt
}

// SaveProcessed writes t to the processed directory as <name>.xlsx and
// returns the path. The data sheet holds one row per table row; the hidden
// schema sheet records each column's type and cell kind. Cells too long for
// a worksheet cell are left empty on the data sheet and stored on the
// hidden overflow sheet.
func (l *Loader) SaveProcessed(ctx context.Context, t domain.Table, name string) (string, error) {
	start := time.Now()
	path := l.paths.GetProcessedPath(workbookName(name))

	f, err := buildWorkbook(ctx, t)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := files.WriteAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	}); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to save %s", path), err)
	}

	l.logger.InfoContext(ctx, "Processed table saved",
		slog.String("path", l.paths.RelativeToRoot(path)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()),
		slog.Duration("duration", time.Since(start)))
	return path, nil
}

func buildWorkbook(ctx context.Context, t domain.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(err error) (*excelize.File, error) {
		_ = f.Close()
		return nil, apperrors.NewStorageError("failed to build workbook", err)
	}

	if err := f.SetSheetName(defaultSheet, DataSheet); err != nil {
		return fail(err)
	}

	cols := t.Columns()
	sw, err := f.NewStreamWriter(DataSheet)
	if err != nil {
		return fail(err)
	}

	header := make([]interface{}, len(cols))
	for j, c := range cols {
		header[j] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fail(err)
	}

	var overflow []overflowCell
	row := make([]interface{}, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
		for j, c := range cols {
			row[j] = cellValue(c.Values[i])
			if str, ok := row[j].(string); ok && utf8.RuneCountInString(str) > excelize.TotalCellChars {
				overflow = append(overflow, overflowCell{column: c.Name, row: i, text: str})
				row[j] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fail(err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fail(err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fail(err)
	}

	if _, err := f.NewSheet(SchemaSheet); err != nil {
		return fail(err)
	}
	if err := f.SetSheetRow(SchemaSheet, "A1", &[]interface{}{"column", "type", "kind"}); err != nil {
		return fail(err)
	}
	if err := f.SetSheetRow(SchemaSheet, "E1", &[]interface{}{"rows", t.NumRows()}); err != nil {
		return fail(err)
	}
	for j, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(1, j+2)
		schema := []interface{}{c.Name, string(c.Type), cellKind(c).String()}
		if err := f.SetSheetRow(SchemaSheet, cell, &schema); err != nil {
			return fail(err)
		}
	}
	if err := f.SetSheetVisible(SchemaSheet, false); err != nil {
		return fail(err)
	}

	if len(overflow) > 0 {
		if err := writeOverflow(f, overflow); err != nil {
			return fail(err)
		}
	}

	return f, nil
}

// overflowCell is a data cell stored on the overflow sheet. Row is the
// zero-based table row.
type overflowCell struct {
	column string
	row    int
	text   string
}

func writeOverflow(f *excelize.File, cells []overflowCell) error {
	if _, err := f.NewSheet(OverflowSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(OverflowSheet, "A1", &[]interface{}{"column", "row", "text"}); err != nil {
		return err
	}
	for i, c := range cells {
		chunks := splitRunes(c.text, excelize.TotalCellChars)
		if len(chunks)+2 > excelize.MaxColumns {
			return fmt.Errorf("cell %s row %d is too long to store (%d chunks)", c.column, c.row+1, len(chunks))
		}
		record := make([]interface{}, 0, len(chunks)+2)
		record = append(record, c.column, c.row)
		for _, chunk := range chunks {
			record = append(record, chunk)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(OverflowSheet, cell, &record); err != nil {
			return err
		}
	}
	return f.SetSheetVisible(OverflowSheet, false)
}

// splitRunes cuts s into pieces of at most n runes
func splitRunes(s string, n int) []string {
	var chunks []string
	for len(s) > 0 {
		end, count := 0, 0
		for end < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}

type overflowKey struct {
	column string
	row    int
}

// readOverflow returns the overflow cells by column and row; a workbook
// without the sheet has none
func readOverflow(f *excelize.File) (map[overflowKey]string, error) {
	if idx, err := f.GetSheetIndex(OverflowSheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(OverflowSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	out := make(map[overflowKey]string, len(rows))
	for i, row := range rows[min(1, len(rows)):] {
		if len(row) < 3 {
			return nil, fmt.Errorf("overflow row %d has %d cells", i+2, len(row))
		}
		n, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("overflow row %d: invalid row %q", i+2, row[1])
		}
		out[overflowKey{column: row[0], row: n}] = strings.Join(row[2:], "")
	}
	return out, nil
}

// cellValue maps a cell onto what the stream writer stores. Absent cells
// stay empty.
func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindAbsent:
		return nil
	case domain.KindFloat:
		f, _ := v.Float64()
		return f
	case domain.KindInt:
		i, _ := v.Int64()
		return i
	case domain.KindBool:
		b, _ := v.BoolValue()
		return b
	case domain.KindSequence:
		return v.Literal()
	case domain.KindTimestamp:
		ts, _ := v.Time()
		return ts.Format(time.RFC3339Nano)
	default:
		return v.String()
	}
}

// cellKind is the kind of the first non-absent cell, String for an all
// absent column
func cellKind(c domain.Column) domain.Kind {
	for _, v := range c.Values {
		if !v.IsAbsent() {
			return v.Kind()
		}
	}
	return domain.KindString
}

func parseKind(s string) domain.Kind {
	for k := domain.KindAbsent; k <= domain.KindTimestamp; k++ {
		if k.String() == s {
			return k
		}
	}
	return domain.KindString
}

// LatestProcessed names the most recently modified workbook in the
// processed directory
func (l *Loader) LatestProcessed() (string, error) {
	wbs, err := l.discovery.FindWorkbooks(l.paths.ProcessedDir)
	if err != nil {
		return "", apperrors.NewStorageError("failed to list processed workbooks", err)
	}
	latest, ok := files.GetLatestFile(wbs)
	if !ok {
		return "", apperrors.NewNotFoundError("processed workbook").
			WithContext("directory", l.paths.ProcessedDir)
	}
	return latest.Name, nil
}

// LoadProcessed reads a workbook written by SaveProcessed. Workbooks
// without a schema sheet load as a raw table of strings.
func (l *Loader) LoadProcessed(ctx context.Context, name string) (domain.Table, error) {
	path := l.paths.GetProcessedPath(workbookName(name))

	if !config.FileExists(path) {
		wbs, _ := l.discovery.FindWorkbooks(l.paths.ProcessedDir)
		return domain.Table{}, l.ensureExists(path, l.paths.ProcessedDir, fileNames(wbs))
	}
	if err := l.validator.ValidateWorkbook(path); err != nil {
		return domain.Table{}, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Table{}, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	schema, err := readSchema(f)
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError(fmt.Sprintf("invalid schema in %s", path), err)
	}

	overflow, err := readOverflow(f)
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError(fmt.Sprintf("invalid overflow sheet in %s", path), err)
	}

	t, err := readData(ctx, f, schema, overflow)
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
	}

	l.logger.InfoContext(ctx, "Processed table loaded",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))
	return t, nil
}

// LoadProcessedSafe loads a processed workbook and re-normalises its list
// columns so they hold sequences or absent cells. Nil listCols means
// DefaultSafeListColumns.
func (l *Loader) LoadProcessedSafe(ctx context.Context, name string, listCols []string) (domain.Table, error) {
	t, err := l.LoadProcessed(ctx, name)
	if err != nil {
		return domain.Table{}, err
	}
	if listCols == nil {
		listCols = DefaultSafeListColumns()
	}
	out := dataprocessing.ConvertListLikeColumns(t, listCols)

	l.logger.DebugContext(ctx, "List columns normalised", slog.Any("columns", listCols))
	return out, nil
}

type columnSchema struct {
	typ  domain.ColumnType
	kind domain.Kind
}

// workbookSchema is the content of the schema sheet. Rows is -1 when the
// workbook has none.
type workbookSchema struct {
	columns map[string]columnSchema
	rows    int
}

func readSchema(f *excelize.File) (workbookSchema, error) {
	schema := workbookSchema{rows: -1}
	if idx, err := f.GetSheetIndex(SchemaSheet); err != nil || idx < 0 {
		return schema, nil
	}
	rows, err := f.GetRows(SchemaSheet)
	if err != nil {
		return schema, err
	}

	schema.columns = make(map[string]columnSchema, len(rows))
	for i, row := range rows {
		if i == 0 {
			if len(row) >= 6 && row[4] == "rows" {
				n, err := strconv.Atoi(row[5])
				if err != nil {
					return schema, fmt.Errorf("invalid row count %q", row[5])
				}
				schema.rows = n
			}
			continue
		}
		if len(row) < 3 {
			return schema, fmt.Errorf("schema row %d has %d cells", i+1, len(row))
		}
		schema.columns[row[0]] = columnSchema{typ: domain.ColumnType(row[1]), kind: parseKind(row[2])}
	}
	return schema, nil
}

func readData(ctx context.Context, f *excelize.File, schema workbookSchema, overflow map[overflowKey]string) (domain.Table, error) {
	rows, err := f.Rows(DataSheet)
	if err != nil {
		return domain.Table{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.Table{}, fmt.Errorf("sheet %q has no header", DataSheet)
	}
	header, err := rows.Columns()
	if err != nil {
		return domain.Table{}, err
	}

	specs := make([]columnSchema, len(header))
	for j, name := range header {
		spec, ok := schema.columns[name]
		if !ok {
			spec = columnSchema{typ: domain.ColumnRaw, kind: domain.KindString}
		}
		specs[j] = spec
	}

	values := make([][]domain.Value, len(header))
	n := 0
	for ; rows.Next(); n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return domain.Table{}, err
		}
		if len(cells) > len(header) {
			return domain.Table{}, fmt.Errorf("row %d has %d cells, header has %d", n+2, len(cells), len(header))
		}
		for j := range header {
			cell := ""
			if j < len(cells) {
				cell = cells[j]
			}
			if text, ok := overflow[overflowKey{column: header[j], row: n}]; ok && cell == "" {
				cell = text
			}
			values[j] = append(values[j], decodeCell(cell, specs[j].kind))
		}
	}
	if err := rows.Error(); err != nil {
		return domain.Table{}, err
	}
	// trailing rows with no cells are not stored
	for ; n < schema.rows; n++ {
		for j := range values {
			values[j] = append(values[j], decodeCell(overflow[overflowKey{column: header[j], row: n}], specs[j].kind))
		}
	}

	cols := make([]domain.Column, len(header))
	for j, name := range header {
		col := domain.Column{Name: name, Type: specs[j].typ, Values: values[j]}
		if col.Values == nil {
			col.Values = []domain.Value{}
		}
		if col.Type == domain.ColumnCategorical {
			col.Categories = col.Distinct()
		}
		cols[j] = col
	}
	return domain.NewTable(cols...)
}

// decodeCell reverses cellValue. Cells that do not parse as their
// recorded kind are absent.
func decodeCell(cell string, kind domain.Kind) domain.Value {
	if cell == "" {
		return domain.Absent()
	}
	switch kind {
	case domain.KindFloat:
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return domain.Float(f)
		}
	case domain.KindInt:
		if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return domain.Int(i)
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil && f == float64(int64(f)) {
			return domain.Int(int64(f))
		}
	case domain.KindBool:
		switch strings.ToLower(cell) {
		case "1", "true":
			return domain.Bool(true)
		case "0", "false":
			return domain.Bool(false)
		}
	case domain.KindSequence:
		if v, ok := dataprocessing.ParseListLiteral(cell); ok {
			return v
		}
	case domain.KindTimestamp:
		if t, err := time.Parse(time.RFC3339Nano, cell); err == nil {
			return domain.Timestamp(t)
		}
	default:
		return domain.String(cell)
	}
	return domain.Absent()
}
