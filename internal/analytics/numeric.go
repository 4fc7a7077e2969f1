package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// DefaultPercentiles are reported by SummarizeNumeric when none are given
func DefaultPercentiles() []float64 {
	return []float64{0.01, 0.05, 0.25, 0.5, 0.75, 0.95, 0.99}
}

// Percentile is one requested quantile
type Percentile struct {
	Label string  `json:"label"`
	P     float64 `json:"p"`
	Value Number  `json:"value"`
}

// NumericSummary describes a quantitative column
type NumericSummary struct {
	Column      string       `json:"column"`
	Count       int          `json:"count"`
	Missing     int          `json:"missing"`
	Min         Number       `json:"min"`
	Q1          Number       `json:"q1"`
	Median      Number       `json:"median"`
	Mean        Number       `json:"mean"`
	Q3          Number       `json:"q3"`
	Max         Number       `json:"max"`
	Std         Number       `json:"std"`
	Skew        Number       `json:"skew"`
	Kurtosis    Number       `json:"kurtosis"`
	Unique      int          `json:"unique"`
	Percentiles []Percentile `json:"percentiles"`
}

// PercentileLabel names p the way summaries report it: 0.05 is "p05"
func PercentileLabel(p float64) string {
	return fmt.Sprintf("p%02d", int(p*100+1e-9))
}

// SummarizeNumeric describes col after numeric coercion. Missing counts
// the absent cells; cells that fail coercion are left out of every other
// statistic. Std needs two values, skew three and kurtosis four.
func SummarizeNumeric(t domain.Table, col string, percentiles []float64) (*NumericSummary, error) {
	c, err := column(t, col)
	if err != nil {
		return nil, err
	}
	if percentiles == nil {
		percentiles = DefaultPercentiles()
	}
	for _, p := range percentiles {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("percentile %v outside [0, 1]", p))
		}
	}

	xs := numericValues(c)
	sort.Float64s(xs)
	n := len(xs)

	s := &NumericSummary{
		Column:   col,
		Count:    n,
		Missing:  c.AbsentCount(),
		Min:      NaN(),
		Q1:       NaN(),
		Median:   NaN(),
		Mean:     NaN(),
		Q3:       NaN(),
		Max:      NaN(),
		Std:      NaN(),
		Skew:     NaN(),
		Kurtosis: NaN(),
		Unique:   countUnique(xs),
	}
	if n > 0 {
		s.Min = Number(xs[0])
		s.Max = Number(xs[n-1])
		s.Q1 = Number(Quantile(xs, 0.25))
		s.Median = Number(Quantile(xs, 0.5))
		s.Q3 = Number(Quantile(xs, 0.75))
		s.Mean = Number(stat.Mean(xs, nil))
	}
	if n > 1 {
		s.Std = Number(stat.StdDev(xs, nil))
	}
	if n > 2 {
		s.Skew = Number(moment(xs, stat.Skew))
	}
	if n > 3 {
		s.Kurtosis = Number(moment(xs, stat.ExKurtosis))
	}

	s.Percentiles = make([]Percentile, len(percentiles))
	for i, p := range percentiles {
		s.Percentiles[i] = Percentile{Label: PercentileLabel(p), P: p, Value: NaN()}
		if n > 0 {
			s.Percentiles[i].Value = Number(Quantile(xs, p))
		}
	}
	return s, nil
}

// moment evaluates a standardized moment; a constant sample has none and
// reports 0.
func moment(xs []float64, fn func(x, weights []float64) float64) float64 {
	if xs[0] == xs[len(xs)-1] {
		return 0
	}
	return fn(xs, nil)
}

// Quantile returns the p-quantile of sorted xs, interpolating linearly
// between the closest ranks: h = (n-1)p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if hi >= n {
		hi = n - 1
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func countUnique(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			n++
		}
	}
	return n
}

// Header implements the exporter sheet contract
func (s *NumericSummary) Header() []string {
	h := []string{"column", "count", "missing", "min", "q1", "median", "mean", "q3", "max", "std", "skew", "kurtosis", "unique"}
	for _, p := range s.Percentiles {
		h = append(h, p.Label)
	}
	return h
}

// Records returns the summary as a single row
func (s *NumericSummary) Records() [][]any {
	row := []any{
		s.Column, s.Count, s.Missing,
		s.Min.record(), s.Q1.record(), s.Median.record(), s.Mean.record(), s.Q3.record(), s.Max.record(),
		s.Std.record(), s.Skew.record(), s.Kurtosis.record(), s.Unique,
	}
	for _, p := range s.Percentiles {
		row = append(row, p.Value.record())
	}
	return [][]any{row}
}
