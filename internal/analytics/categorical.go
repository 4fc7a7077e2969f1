package analytics

import (
	"sort"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// DefaultTopK bounds category listings when callers pass 0
const DefaultTopK = 20

// ValueCount is one category with its frequency
type ValueCount struct {
	Value domain.Value `json:"value"`
	Count int          `json:"count"`
	Prop  Number       `json:"prop,omitempty"`
}

// CategoricalSummary describes a qualitative column. Prop is only set
// when the summary was normalized.
type CategoricalSummary struct {
	Column     string       `json:"column"`
	Total      int          `json:"total"`
	Missing    int          `json:"missing"`
	Unique     int          `json:"unique"`
	Normalized bool         `json:"normalized"`
	Top        []ValueCount `json:"top"`
}

// valueCounts counts values by descending frequency; ties keep the order
// of first appearance.
func valueCounts(values []domain.Value, dropNA bool) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for _, v := range values {
		if dropNA && v.IsAbsent() {
			continue
		}
		k := v.Key()
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func topK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	return k
}

// SummarizeCategorical returns the total, absent and distinct counts of
// col with its topK most frequent values. Unless dropNA is set, absent
// cells are counted as a value of their own. With normalize each value
// carries its share of the counted cells, rounded to 4 decimals.
func SummarizeCategorical(t domain.Table, col string, k int, normalize, dropNA bool) (*CategoricalSummary, error) {
	c, err := column(t, col)
	if err != nil {
		return nil, err
	}

	counts := valueCounts(c.Values, dropNA)
	counted := 0
	for _, vc := range counts {
		counted += vc.Count
	}

	s := &CategoricalSummary{
		Column:  col,
		Total:   c.Len(),
		Missing: c.AbsentCount(),
		Unique:  len(c.Distinct()),
	}

	k = topK(k)
	if len(counts) > k {
		counts = counts[:k]
	}
	if normalize && counted > 0 {
		s.Normalized = true
		for i := range counts {
			counts[i].Prop = Number(round(float64(counts[i].Count)/float64(counted), 4))
		}
	}
	s.Top = counts
	return s, nil
}

// Header implements the exporter sheet contract
func (s *CategoricalSummary) Header() []string {
	h := []string{"value", "total", "missing", "unique", "count"}
	if s.Normalized {
		h = append(h, "prop")
	}
	return h
}

// Records returns a summary row followed by one row per top value
func (s *CategoricalSummary) Records() [][]any {
	summary := []any{"__summary__", s.Total, s.Missing, s.Unique, nil}
	if s.Normalized {
		summary = append(summary, nil)
	}
	rows := [][]any{summary}
	for _, vc := range s.Top {
		row := []any{vc.Value.String(), nil, nil, nil, vc.Count}
		if s.Normalized {
			row = append(row, vc.Prop.record())
		}
		rows = append(rows, row)
	}
	return rows
}

// ElementFrequency is one element of a list column with its rank
type ElementFrequency struct {
	Rank      int          `json:"rank"`
	Element   domain.Value `json:"element"`
	Frequency int          `json:"frequency"`
}

// ListAnalysis ranks the elements found in a list column
type ListAnalysis struct {
	Column   string             `json:"column"`
	Total    int                `json:"total"`
	Unique   int                `json:"unique"`
	Elements []ElementFrequency `json:"elements"`
}

// AnalyzeListColumn counts the elements of every sequence cell in col and
// ranks the topK most frequent from 1. Cells that are not sequences are
// skipped, so the column should have been through the list parser. Ties
// keep the order in which elements were first seen.
func AnalyzeListColumn(t domain.Table, col string, k int) (*ListAnalysis, error) {
	c, err := column(t, col)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}

	var items []domain.Value
	for _, v := range c.Values {
		if seq, ok := v.Items(); ok {
			items = append(items, seq...)
		}
	}
	counts := valueCounts(items, false)

	a := &ListAnalysis{Column: col, Total: len(items), Unique: len(counts)}
	if len(counts) > k {
		counts = counts[:k]
	}
	a.Elements = make([]ElementFrequency, len(counts))
	for i, vc := range counts {
		a.Elements[i] = ElementFrequency{Rank: i + 1, Element: vc.Value, Frequency: vc.Count}
	}
	return a, nil
}

// Header implements the exporter sheet contract
func (a *ListAnalysis) Header() []string {
	return []string{"rank", "element", "frequency"}
}

// Records returns one row per ranked element
func (a *ListAnalysis) Records() [][]any {
	rows := make([][]any, len(a.Elements))
	for i, e := range a.Elements {
		rows[i] = []any{e.Rank, e.Element.String(), e.Frequency}
	}
	return rows
}
