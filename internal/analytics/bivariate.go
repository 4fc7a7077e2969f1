package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// NumNumSummary relates two quantitative columns
type NumNumSummary struct {
	X        string `json:"x"`
	Y        string `json:"y"`
	N        int    `json:"n"`
	Pearson  Number `json:"pearson"`
	Spearman Number `json:"spearman"`
	Cov      Number `json:"cov"`
}

// Label names the pair as x~y
func (s *NumNumSummary) Label() string { return s.X + "~" + s.Y }

// SummarizeNumNum computes the Pearson and Spearman correlations and the
// sample covariance of x and y over the rows where both coerce to numbers.
func SummarizeNumNum(t domain.Table, x, y string) (*NumNumSummary, error) {
	xs, ys, err := NumericPairs(t, x, y)
	if err != nil {
		return nil, err
	}

	s := &NumNumSummary{X: x, Y: y, N: len(xs), Pearson: NaN(), Spearman: NaN(), Cov: NaN()}
	if len(xs) < 2 {
		return s, nil
	}
	s.Pearson = Number(stat.Correlation(xs, ys, nil))
	s.Spearman = Number(stat.Correlation(Ranks(xs), Ranks(ys), nil))
	s.Cov = Number(stat.Covariance(xs, ys, nil))
	return s, nil
}

// Ranks returns the 1-based ranks of xs; ties share their average rank.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Header implements the exporter sheet contract
func (s *NumNumSummary) Header() []string {
	return []string{"pair", "n", "pearson", "spearman", "cov"}
}

// Records returns the summary as a single row
func (s *NumNumSummary) Records() [][]any {
	return [][]any{{s.Label(), s.N, s.Pearson.record(), s.Spearman.record(), s.Cov.record()}}
}

// GroupStats describes the numeric values of one category
type GroupStats struct {
	Category domain.Value `json:"category"`
	Count    int          `json:"count"`
	Mean     Number       `json:"mean"`
	Median   Number       `json:"median"`
	Std      Number       `json:"std"`
}

// NumCatSummary describes a quantitative column per category
type NumCatSummary struct {
	Numeric     string       `json:"numeric"`
	Categorical string       `json:"categorical"`
	Groups      []GroupStats `json:"groups"`
}

// Group is the numeric values observed for one category
type Group struct {
	Category domain.Value
	Values   []float64
}

// GroupNumeric splits the numeric column by the topK most frequent
// categories, over the rows where the number coerces and the category is
// present. Groups are sorted by descending size, then by category.
func GroupNumeric(t domain.Table, num, cat string, k int) ([]Group, error) {
	cn, err := column(t, num)
	if err != nil {
		return nil, err
	}
	cc, err := column(t, cat)
	if err != nil {
		return nil, err
	}

	var cats []domain.Value
	var nums []float64
	for i := range cn.Values {
		f, ok := ToFloat(cn.Values[i])
		if !ok || cc.Values[i].IsAbsent() {
			continue
		}
		cats = append(cats, cc.Values[i])
		nums = append(nums, f)
	}

	counts := valueCounts(cats, true)
	if k = topK(k); len(counts) > k {
		counts = counts[:k]
	}
	pos := make(map[string]int, len(counts))
	groups := make([]Group, len(counts))
	for i, vc := range counts {
		pos[vc.Value.Key()] = i
		groups[i] = Group{Category: vc.Value, Values: make([]float64, 0, vc.Count)}
	}
	for i, c := range cats {
		if g, ok := pos[c.Key()]; ok {
			groups[g].Values = append(groups[g].Values, nums[i])
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Values) != len(groups[j].Values) {
			return len(groups[i].Values) > len(groups[j].Values)
		}
		return domain.Compare(groups[i].Category, groups[j].Category) < 0
	})
	return groups, nil
}

// SummarizeNumCat reports count, mean, median and sample standard
// deviation of the numeric column for each group of GroupNumeric.
func SummarizeNumCat(t domain.Table, num, cat string, k int) (*NumCatSummary, error) {
	groups, err := GroupNumeric(t, num, cat, k)
	if err != nil {
		return nil, err
	}

	s := &NumCatSummary{Numeric: num, Categorical: cat, Groups: make([]GroupStats, 0, len(groups))}
	for _, g := range groups {
		xs := append([]float64(nil), g.Values...)
		sort.Float64s(xs)
		gs := GroupStats{
			Category: g.Category,
			Count:    len(xs),
			Mean:     Number(stat.Mean(xs, nil)),
			Median:   Number(Quantile(xs, 0.5)),
			Std:      NaN(),
		}
		if len(xs) > 1 {
			gs.Std = Number(stat.StdDev(xs, nil))
		}
		s.Groups = append(s.Groups, gs)
	}
	return s, nil
}

// Header implements the exporter sheet contract
func (s *NumCatSummary) Header() []string {
	return []string{s.Categorical, "count", "mean", "median", "std"}
}

// Records returns one row per category
func (s *NumCatSummary) Records() [][]any {
	rows := make([][]any, len(s.Groups))
	for i, g := range s.Groups {
		rows[i] = []any{g.Category.String(), g.Count, g.Mean.record(), g.Median.record(), g.Std.record()}
	}
	return rows
}

// Crosstab normalizations
const (
	NormalizeNone    = ""
	NormalizeIndex   = "index"
	NormalizeColumns = "columns"
	NormalizeAll     = "all"
)

// Crosstab is a contingency table of two categorical columns. Cells[i][j]
// counts rows with Rows[i] in the first column and Columns[j] in the
// second, or their share when normalized.
type Crosstab struct {
	RowVar    string         `json:"row_var"`
	ColVar    string         `json:"col_var"`
	Normalize string         `json:"normalize,omitempty"`
	Rows      []domain.Value `json:"rows"`
	Columns   []domain.Value `json:"columns"`
	Cells     [][]Number     `json:"cells"`
}

// SummarizeCatCat cross-tabulates a and b over the rows where both are
// present, keeping the topK most frequent values of each. normalize is
// one of "", "none", "index" (rows sum to 1), "columns" or "all";
// normalized shares are rounded to 4 decimals.
func SummarizeCatCat(t domain.Table, a, b string, k int, normalize string) (*Crosstab, error) {
	switch normalize {
	case "none":
		normalize = NormalizeNone
	case NormalizeNone, NormalizeIndex, NormalizeColumns, NormalizeAll:
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid normalize %q", normalize)).
			WithContext("allowed", []string{"none", NormalizeIndex, NormalizeColumns, NormalizeAll})
	}

	ca, err := column(t, a)
	if err != nil {
		return nil, err
	}
	cb, err := column(t, b)
	if err != nil {
		return nil, err
	}

	var as, bs []domain.Value
	for i := range ca.Values {
		if ca.Values[i].IsAbsent() || cb.Values[i].IsAbsent() {
			continue
		}
		as = append(as, ca.Values[i])
		bs = append(bs, cb.Values[i])
	}

	k = topK(k)
	topA, topB := topKeys(as, k), topKeys(bs, k)
	var fa, fb []domain.Value
	for i := range as {
		if topA[as[i].Key()] && topB[bs[i].Key()] {
			fa = append(fa, as[i])
			fb = append(fb, bs[i])
		}
	}
	rowIdx, rows := sortedIndex(fa)
	colIdx, cols := sortedIndex(fb)

	counts := make([][]float64, len(rows))
	for i := range counts {
		counts[i] = make([]float64, len(cols))
	}
	for i := range fa {
		counts[rowIdx[fa[i].Key()]][colIdx[fb[i].Key()]]++
	}

	ct := &Crosstab{RowVar: a, ColVar: b, Normalize: normalize, Rows: rows, Columns: cols}
	ct.Cells = normalizeCounts(counts, len(cols), normalize)
	return ct, nil
}

// topKeys returns the keys of the k most frequent values
func topKeys(values []domain.Value, k int) map[string]bool {
	counts := valueCounts(values, true)
	if len(counts) > k {
		counts = counts[:k]
	}
	keys := make(map[string]bool, len(counts))
	for _, vc := range counts {
		keys[vc.Value.Key()] = true
	}
	return keys
}

// sortedIndex returns the sorted distinct values and maps their keys to
// positions
func sortedIndex(values []domain.Value) (map[string]int, []domain.Value) {
	distinct := domain.Column{Values: values}.Distinct()
	idx := make(map[string]int, len(distinct))
	for i, v := range distinct {
		idx[v.Key()] = i
	}
	return idx, distinct
}

func normalizeCounts(counts [][]float64, ncols int, normalize string) [][]Number {
	var total float64
	rowSum := make([]float64, len(counts))
	colSum := make([]float64, ncols)
	for i, row := range counts {
		for j, c := range row {
			rowSum[i] += c
			colSum[j] += c
			total += c
		}
	}

	out := make([][]Number, len(counts))
	for i, row := range counts {
		out[i] = make([]Number, len(row))
		for j, c := range row {
			var denom float64
			switch normalize {
			case NormalizeIndex:
				denom = rowSum[i]
			case NormalizeColumns:
				denom = colSum[j]
			case NormalizeAll:
				denom = total
			default:
				out[i][j] = Number(c)
				continue
			}
			if denom == 0 {
				out[i][j] = Number(math.NaN())
				continue
			}
			out[i][j] = Number(round(c/denom, 4))
		}
	}
	return out
}

// Header implements the exporter sheet contract
func (ct *Crosstab) Header() []string {
	h := []string{ct.RowVar + `\` + ct.ColVar}
	for _, c := range ct.Columns {
		h = append(h, c.String())
	}
	return h
}

// Records returns one row per row value
func (ct *Crosstab) Records() [][]any {
	rows := make([][]any, len(ct.Rows))
	for i, r := range ct.Rows {
		row := []any{r.String()}
		for _, c := range ct.Cells[i] {
			row = append(row, c.record())
		}
		rows[i] = row
	}
	return rows
}
