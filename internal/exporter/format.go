package exporter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// formatFloat formats a float64 with the fewest digits that round-trip
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatValue renders a table cell. Absent cells are empty and sequences
// use the list literal syntax.
func formatValue(v domain.Value) string {
	switch v.Kind() {
	case domain.KindAbsent:
		return ""
	case domain.KindFloat:
		f, _ := v.Float64()
		return formatFloat(f)
	case domain.KindInt:
		i, _ := v.Int64()
		return formatInt(i)
	case domain.KindBool:
		b, _ := v.BoolValue()
		return formatBool(b)
	case domain.KindSequence:
		return v.Literal()
	}
	return v.String()
}

// formatCell renders a summary record cell; nil is empty
func formatCell(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return formatInt(v)
	case bool:
		return formatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case domain.Value:
		return formatValue(v)
	}
	return fmt.Sprint(c)
}

func formatRecord(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = formatCell(c)
	}
	return out
}
