package dataprocessing

import (
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// EnsureListOrAbsent coerces a cell to a sequence or absent:
// sequences pass through, list literals are parsed, everything else is absent.
func EnsureListOrAbsent(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindSequence:
		return v
	case domain.KindString:
		s, _ := v.Str()
		if parsed, ok := ParseListLiteral(s); ok {
			return parsed
		}
	}
	return domain.Absent()
}

// ConvertListLikeColumns turns string-encoded list columns into sequence
// columns. Cells that cannot be parsed become absent. Columns missing from
// the table are skipped.
func ConvertListLikeColumns(t domain.Table, cols []string) domain.Table {
	out, _ := convertListLikeColumns(t, cols)
	return out
}

func convertListLikeColumns(t domain.Table, cols []string) (domain.Table, StageStats) {
	stats := StageStats{Stage: StageListColumns}
	out := t.Clone()
	for _, name := range cols {
		col, ok := out.Column(name)
		if !ok {
			stats.MissingColumns = append(stats.MissingColumns, name)
			continue
		}
		values := make([]domain.Value, col.Len())
		for i, v := range col.Values {
			values[i] = EnsureListOrAbsent(v)
			if values[i].IsAbsent() && !v.IsAbsent() {
				stats.DegradedCells++
			}
		}
		mustSet(&out, domain.NewColumn(name, domain.ColumnList, values))
	}
	return out, stats
}

// mustSet writes a column whose length was derived from t.NumRows().
func mustSet(t *domain.Table, col domain.Column) {
	if err := t.Set(col); err != nil {
		panic(err)
	}
}
