package visualization

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/analytics"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Chart defaults
const (
	DefaultBins       = 50
	DefaultTopK       = 20
	DefaultSample     = 5000
	DefaultWidth      = 8 * vg.Inch
	DefaultHeight     = 5 * vg.Inch
	sampleSeed        = 42
	heatmapPaletteLen = 64
)

// Options tune a chart. Zero fields take the package defaults; MaxX of 0
// leaves the x axis unbounded.
type Options struct {
	Title     string
	Bins      int
	MaxX      float64
	TopK      int
	Normalize bool
	Sample    int
	Width     vg.Length
	Height    vg.Length
}

func (o Options) withDefaults() Options {
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Sample <= 0 {
		o.Sample = DefaultSample
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

func (o Options) title(fallback string) string {
	if o.Title != "" {
		return o.Title
	}
	return fallback
}

func noData(col string) error {
	return apperrors.NewAppValidationError(fmt.Sprintf("no plottable values in %s", col)).
		WithContext("column", col)
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func save(w io.Writer, p *plot.Plot, o Options) error {
	wt, err := p.WriterTo(o.Width, o.Height, "png")
	if err != nil {
		return apperrors.NewEncodingError("failed to render chart", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return apperrors.NewStorageError("failed to write chart", err)
	}
	return nil
}

// Histogram plots the distribution of a numeric column. Values above
// MaxX are left out.
func Histogram(w io.Writer, t domain.Table, col string, opts Options) error {
	o := opts.withDefaults()
	xs, err := analytics.NumericColumn(t, col)
	if err != nil {
		return err
	}
	xs = finite(xs)
	if o.MaxX != 0 {
		var kept []float64
		for _, x := range xs {
			if x <= o.MaxX {
				kept = append(kept, x)
			}
		}
		xs = kept
	}
	if len(xs) == 0 {
		return noData(col)
	}

	p := newPlot(o.title("Distribution of "+col), col, "Count")
	h, err := plotter.NewHist(plotter.Values(xs), o.Bins)
	if err != nil {
		return apperrors.NewEncodingError("failed to bin values", err)
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	return save(w, p, o)
}

// BoxPlot draws the quartiles and outliers of a numeric column. MaxX caps
// the value axis.
func BoxPlot(w io.Writer, t domain.Table, col string, opts Options) error {
	o := opts.withDefaults()
	xs, err := analytics.NumericColumn(t, col)
	if err != nil {
		return err
	}
	xs = finite(xs)
	if len(xs) == 0 {
		return noData(col)
	}

	p := newPlot(o.title("Boxplot of "+col), "", col)
	b, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(xs))
	if err != nil {
		return apperrors.NewEncodingError("failed to build boxplot", err)
	}
	b.FillColor = plotutil.Color(0)
	p.Add(b)
	p.NominalX(col)
	if o.MaxX != 0 {
		p.Y.Max = o.MaxX
	}
	return save(w, p, o)
}

// BarCategorical plots the TopK most frequent values of a column, absent
// included. With Normalize the bars show shares of the plotted total.
func BarCategorical(w io.Writer, t domain.Table, col string, opts Options) error {
	o := opts.withDefaults()
	sum, err := analytics.SummarizeCategorical(t, col, o.TopK, false, false)
	if err != nil {
		return err
	}
	if len(sum.Top) == 0 {
		return noData(col)
	}

	total := 0
	for _, vc := range sum.Top {
		total += vc.Count
	}
	names := make([]string, len(sum.Top))
	values := make(plotter.Values, len(sum.Top))
	for i, vc := range sum.Top {
		names[i] = label(vc.Value)
		values[i] = float64(vc.Count)
		if o.Normalize {
			values[i] /= float64(total)
		}
	}

	ylabel := "Count"
	if o.Normalize {
		ylabel = "Proportion"
	}
	p := newPlot(o.title(fmt.Sprintf("Top-%d values of %s", o.TopK, col)), col, ylabel)
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return apperrors.NewEncodingError("failed to build bar chart", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	return save(w, p, o)
}

// ScatterNumNum plots y against x over the rows where both are numeric.
// Larger inputs are sampled down to Sample points with a fixed seed.
func ScatterNumNum(w io.Writer, t domain.Table, x, y string, opts Options) error {
	o := opts.withDefaults()
	xs, ys, err := analytics.NumericPairs(t, x, y)
	if err != nil {
		return err
	}
	if len(xs) == 0 {
		return noData(x + "~" + y)
	}

	idx := sampleIndex(len(xs), o.Sample)
	pts := make(plotter.XYs, 0, len(idx))
	for _, j := range idx {
		if isFinite(xs[j]) && isFinite(ys[j]) {
			pts = append(pts, plotter.XY{X: xs[j], Y: ys[j]})
		}
	}

	p := newPlot(o.title(y+" ~ "+x), x, y)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return apperrors.NewEncodingError("failed to build scatter", err)
	}
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 128}
	s.Radius = vg.Points(2)
	p.Add(s)
	if o.MaxX != 0 {
		p.X.Max = o.MaxX
	}
	return save(w, p, o)
}

func sampleIndex(n, limit int) []int {
	if n <= limit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return rand.New(rand.NewSource(sampleSeed)).Perm(n)[:limit]
}

// BoxNumByCat draws one boxplot of num per category, for the TopK most
// frequent categories.
func BoxNumByCat(w io.Writer, t domain.Table, num, cat string, opts Options) error {
	o := opts.withDefaults()
	groups, err := analytics.GroupNumeric(t, num, cat, o.TopK)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return noData(num + " by " + cat)
	}

	p := newPlot(o.title(fmt.Sprintf("%s by %s (Top-%d)", num, cat, o.TopK)), cat, num)
	names := make([]string, len(groups))
	for i, g := range groups {
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(g.Values))
		if err != nil {
			return apperrors.NewEncodingError("failed to build boxplot", err)
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
		names[i] = label(g.Category)
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	if o.MaxX != 0 {
		p.Y.Max = o.MaxX
	}
	return save(w, p, o)
}

// HeatmapCatCat colours the contingency table of a and b. Normalize
// shows row shares instead of counts.
func HeatmapCatCat(w io.Writer, t domain.Table, a, b string, opts Options) error {
	o := opts.withDefaults()
	normalize := analytics.NormalizeNone
	if o.Normalize {
		normalize = analytics.NormalizeIndex
	}
	ct, err := analytics.SummarizeCatCat(t, a, b, o.TopK, normalize)
	if err != nil {
		return err
	}
	if len(ct.Rows) == 0 || len(ct.Columns) == 0 {
		return noData(a + " x " + b)
	}

	grid := crosstabGrid{ct: ct}
	hm := plotter.NewHeatMap(grid, palette.Heat(heatmapPaletteLen, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}

	p := newPlot(o.title(fmt.Sprintf("%s x %s", a, b)), b, a)
	p.Add(hm)

	cols := make([]string, len(ct.Columns))
	for i, v := range ct.Columns {
		cols[i] = label(v)
	}
	rows := make([]string, len(ct.Rows))
	for i, v := range ct.Rows {
		rows[i] = label(v)
	}
	p.NominalX(cols...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	return save(w, p, o)
}

// crosstabGrid exposes a crosstab as a plotter.GridXYZ
type crosstabGrid struct {
	ct *analytics.Crosstab
}

func (g crosstabGrid) Dims() (c, r int)   { return len(g.ct.Columns), len(g.ct.Rows) }
func (g crosstabGrid) Z(c, r int) float64 { return float64(g.ct.Cells[r][c]) }
func (g crosstabGrid) X(c int) float64    { return float64(c) }
func (g crosstabGrid) Y(r int) float64    { return float64(r) }

func isFinite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if isFinite(x) {
			out = append(out, x)
		}
	}
	return out
}

func label(v domain.Value) string {
	if v.IsAbsent() {
		return "NaN"
	}
	return v.String()
}
