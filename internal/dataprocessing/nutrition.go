package dataprocessing

import (
	"strconv"
	"strings"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// SplitOptions configures SplitNutritionColumns
type SplitOptions struct {
	// Source is the packed column, "nutrition" when empty
	Source string
	// Outputs names one column per vector position, the seven nutrition
	// names when empty
	Outputs []string
	// DropOriginal removes Source after the split
	DropOriginal bool
}

// DefaultSplitOptions returns the standard nutrition split
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		Source:  domain.RecipeNutrition,
		Outputs: domain.NutritionColumns(),
	}
}

func (o SplitOptions) normalized() SplitOptions {
	if o.Source == "" {
		o.Source = domain.RecipeNutrition
	}
	if len(o.Outputs) == 0 {
		o.Outputs = domain.NutritionColumns()
	} else {
		o.Outputs = append([]string(nil), o.Outputs...)
	}
	return o
}

// SplitNutritionColumns expands the packed nutrition vector into one float
// column per output name, appended in order. Vectors are padded with absent
// values or truncated to len(Outputs); a cell that is not a list yields
// absent in every output. A table without the source column is returned
// unchanged. If an output column already exists the table is left alone
// and a *NameCollisionError is returned.
func SplitNutritionColumns(t domain.Table, opts SplitOptions) (domain.Table, error) {
	out, _, err := splitNutritionColumns(t, opts)
	return out, err
}

func splitNutritionColumns(t domain.Table, opts SplitOptions) (domain.Table, StageStats, error) {
	opts = opts.normalized()
	stats := StageStats{Stage: StageNutritionSplit}

	src, ok := t.Column(opts.Source)
	if !ok {
		stats.MissingColumns = []string{opts.Source}
		return t.Clone(), stats, nil
	}

	var dupes []string
	for _, name := range opts.Outputs {
		if t.HasColumn(name) {
			dupes = append(dupes, name)
		}
	}
	if len(dupes) > 0 {
		return t.Clone(), stats, &NameCollisionError{Names: dupes}
	}

	n := len(opts.Outputs)
	outputs := make([][]domain.Value, n)
	for j := range outputs {
		outputs[j] = make([]domain.Value, src.Len())
	}
	for i, cell := range src.Values {
		coerced := EnsureListOrAbsent(cell)
		vector, reshaped := padOrAbsent(coerced, n)
		if reshaped && !coerced.IsAbsent() {
			stats.DegradedCells++
		}
		for j, entry := range vector {
			f, ok := toNumber(entry)
			if !ok && !entry.IsAbsent() {
				stats.DegradedCells++
			}
			outputs[j][i] = f
		}
	}

	result := t.Clone()
	for j, name := range opts.Outputs {
		mustSet(&result, domain.NewColumn(name, domain.ColumnFloat, outputs[j]))
		stats.ColumnsAdded = append(stats.ColumnsAdded, name)
	}
	if opts.DropOriginal {
		result = result.Drop(opts.Source)
	}
	return result, stats, nil
}

// padOrAbsent returns exactly n entries: a sequence is padded with absent
// values or truncated, anything else becomes n absent values. The second
// result reports whether the input did not already have length n.
func padOrAbsent(v domain.Value, n int) ([]domain.Value, bool) {
	items, ok := v.Items()
	if !ok {
		return make([]domain.Value, n), true
	}
	if len(items) == n {
		return items, false
	}
	if len(items) > n {
		return items[:n], true
	}
	padded := make([]domain.Value, n)
	copy(padded, items)
	return padded, true
}

// toNumber converts a vector entry to a float cell. Numeric strings are
// accepted and booleans count as 1 or 0; other kinds are absent.
func toNumber(v domain.Value) (domain.Value, bool) {
	if f, ok := v.Float64(); ok {
		return domain.Float(f), true
	}
	if b, ok := v.BoolValue(); ok {
		if b {
			return domain.Float(1), true
		}
		return domain.Float(0), true
	}
	if s, ok := v.Str(); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return domain.Float(f), true
		}
	}
	return domain.Absent(), false
}
