package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// GenerateAutoDescription returns the row's description when it is a non-blank
// string, otherwise a short generated sentence built from the first tag, the
// preparation time and the step and ingredient counts.
func GenerateAutoDescription(row map[string]domain.Value) string {
	if desc, ok := row[domain.RecipeDescription].Str(); ok && strings.TrimSpace(desc) != "" {
		return desc
	}

	parts := []string{"This is a"}
	if category := firstTag(row[domain.RecipeTags]); category != "" {
		parts = append(parts, category)
	}
	parts = append(parts, "recipe")

	if minutes, ok := numericCell(row[domain.RecipeMinutes]); ok {
		switch {
		case minutes < 30:
			parts = append(parts, "that is quick to prepare")
		case minutes < 90:
			parts = append(parts, "of moderate duration")
		default:
			parts = append(parts, "that takes longer to cook")
		}
	}

	steps, okSteps := numericCell(row[domain.RecipeNSteps])
	ingredients, okIngredients := numericCell(row[domain.RecipeNIngredients])
	if okSteps && okIngredients {
		switch {
		case steps <= 5 && ingredients <= 5:
			parts = append(parts, "and very simple to make")
		case steps > 10 || ingredients > 10:
			parts = append(parts, "and rather elaborate")
		default:
			parts = append(parts, "with average complexity")
		}
	}

	sentence := capitalize(strings.TrimSpace(strings.Join(parts, " ")))
	if !strings.HasSuffix(sentence, ".") {
		sentence += "."
	}
	return sentence
}

// FillDescriptions adds a description_filled column holding the original
// description or a generated one for every row.
func FillDescriptions(t domain.Table) domain.Table {
	values := make([]domain.Value, t.NumRows())
	for i := range values {
		values[i] = domain.String(GenerateAutoDescription(t.Row(i)))
	}
	out := t.Clone()
	mustSet(&out, domain.NewColumn(domain.RecipeDescriptionFilled, domain.ColumnRaw, values))
	return out
}

func firstTag(v domain.Value) string {
	items, ok := EnsureListOrAbsent(v).Items()
	if !ok || len(items) == 0 {
		return ""
	}
	tag, ok := items[0].Str()
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
}

// numericCell reads a number from a numeric or numeric-string cell
// numericCell reads a number from a cell; NaN counts as missing
func numericCell(v domain.Value) (float64, bool) {
	if f, ok := v.Float64(); ok {
		return f, !math.IsNaN(f)
	}
	if s, ok := v.Str(); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
