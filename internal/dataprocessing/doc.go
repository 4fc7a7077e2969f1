// Package dataprocessing converts raw recipe tables into typed tables ready
// for univariate and bivariate analysis. Every stage is a single pass that
// returns a new table and leaves its input untouched.
//
// # Stages
//
// The conversion runs four stages in a fixed order:
//
// 1. List columns: string-encoded lists ("['a', 'b']") become sequences
// 2. Nutrition split: the packed 7-value nutrition vector becomes 7 float columns
// 3. Temporal: the submitted column becomes a timestamp, plus calendar parts
// 4. Category: contributor_id is marked categorical
//
// Nutrition columns are appended before temporal part columns.
//
// # Usage
//
// Pure conversion:
//
//	out, err := dataprocessing.ConvertRecipesForUnivariate(raw, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Instrumented run with a report:
//
//	p := dataprocessing.NewPipeline(dataprocessing.DefaultConfig(), logger, metrics)
//	out, report, err := p.Run(ctx, raw)
//
// # Error Handling
//
// Malformed cells never fail a stage: unparsable lists, dates and short or
// long nutrition vectors degrade to absent values and are counted in the
// ConversionReport. The one returned error is *NameCollisionError, raised when
// the nutrition split would overwrite existing columns:
//
//	if errors.Is(err, dataprocessing.ErrNameCollision) { ... }
//
// Running the conversion on its own output is a no-op.
package dataprocessing
