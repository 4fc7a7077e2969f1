// Package visualization renders exploratory charts of domain tables as
// PNG images with gonum/plot.
//
// Univariate charts are Histogram, BoxPlot and BarCategorical. Bivariate
// charts are ScatterNumNum, BoxNumByCat and HeatmapCatCat. Each writes one
// image to an io.Writer; Renderer.RenderAll renders a batch to files
// concurrently.
package visualization
