package dataprocessing

import (
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// ConvertToCategory marks a column as categorical with its sorted distinct
// non-absent values as the domain. Values are not changed. A missing column
// is a no-op.
func ConvertToCategory(t domain.Table, col string) domain.Table {
	out, _ := convertToCategory(t, col)
	return out
}

func convertToCategory(t domain.Table, name string) (domain.Table, StageStats) {
	stats := StageStats{Stage: StageCategory}
	col, ok := t.Column(name)
	if !ok {
		stats.MissingColumns = []string{name}
		return t.Clone(), stats
	}
	col.Type = domain.ColumnCategorical
	col.Categories = col.Distinct()

	out := t.Clone()
	mustSet(&out, col)
	return out, stats
}
