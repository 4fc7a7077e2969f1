package dataprocessing

import (
	"strings"
	"time"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Calendar parts derived from a timestamp column
const (
	PartYear      = "year"
	PartMonth     = "month"
	PartDay       = "day"
	PartDayOfWeek = "dayofweek"
)

var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01/02/2006",
}

// TemporalOptions configures ConvertTemporalColumns
type TemporalOptions struct {
	Source   string
	AddParts bool
	Parts    []string
}

// DefaultTemporalOptions parses "submitted" and derives year and month
func DefaultTemporalOptions() TemporalOptions {
	return TemporalOptions{
		Source:   domain.RecipeSubmitted,
		AddParts: true,
		Parts:    []string{PartYear, PartMonth},
	}
}

// ParseTimestamp parses a date string with the supported layouts. Invalid
// calendar dates such as 2019-02-30 fail.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func coerceTimestamp(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindTimestamp:
		return v
	case domain.KindString:
		s, _ := v.Str()
		if ts, ok := ParseTimestamp(s); ok {
			return domain.Timestamp(ts)
		}
	}
	return domain.Absent()
}

// ConvertTemporalColumns parses the source column into timestamps, with
// unparsable cells becoming absent, and optionally appends integer columns
// for the requested calendar parts. Unknown part names are ignored and an
// existing part column is replaced in place. A table without the source
// column is returned unchanged.
func ConvertTemporalColumns(t domain.Table, opts TemporalOptions) domain.Table {
	out, _ := convertTemporalColumns(t, opts)
	return out
}

func convertTemporalColumns(t domain.Table, opts TemporalOptions) (domain.Table, StageStats) {
	if opts.Source == "" {
		opts.Source = domain.RecipeSubmitted
	}
	stats := StageStats{Stage: StageTemporal}

	src, ok := t.Column(opts.Source)
	if !ok {
		stats.MissingColumns = []string{opts.Source}
		return t.Clone(), stats
	}

	parsed := make([]domain.Value, src.Len())
	for i, v := range src.Values {
		parsed[i] = coerceTimestamp(v)
		if parsed[i].IsAbsent() && !v.IsAbsent() {
			stats.DegradedCells++
		}
	}

	out := t.Clone()
	mustSet(&out, domain.NewColumn(opts.Source, domain.ColumnTimestamp, parsed))
	if !opts.AddParts {
		return out, stats
	}

	for _, part := range uniqueParts(opts.Parts) {
		extract := partExtractor(part)
		values := make([]domain.Value, len(parsed))
		for i, v := range parsed {
			if ts, ok := v.Time(); ok {
				values[i] = domain.Int(int64(extract(ts)))
			}
		}
		if !out.HasColumn(part) {
			stats.ColumnsAdded = append(stats.ColumnsAdded, part)
		}
		mustSet(&out, domain.NewColumn(part, domain.ColumnInt, values))
	}
	return out, stats
}

// uniqueParts keeps known part names in request order, dropping repeats
func uniqueParts(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		if partExtractor(p) == nil || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func partExtractor(part string) func(time.Time) int {
	switch part {
	case PartYear:
		return func(ts time.Time) int { return ts.Year() }
	case PartMonth:
		return func(ts time.Time) int { return int(ts.Month()) }
	case PartDay:
		return func(ts time.Time) int { return ts.Day() }
	case PartDayOfWeek:
		// Monday is 0
		return func(ts time.Time) int { return (int(ts.Weekday()) + 6) % 7 }
	default:
		return nil
	}
}
