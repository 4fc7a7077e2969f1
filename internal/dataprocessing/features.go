package dataprocessing

import (
	"strings"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// AddRecipeFeatures adds description_length, the word count of
// description_filled. Rows without a filled description count zero words.
// The table is returned unchanged when description_filled is missing.
func AddRecipeFeatures(t domain.Table) domain.Table {
	col, ok := t.Column(domain.RecipeDescriptionFilled)
	if !ok {
		return t.Clone()
	}
	values := make([]domain.Value, col.Len())
	for i, v := range col.Values {
		words := 0
		if !v.IsAbsent() {
			words = len(strings.Fields(v.String()))
		}
		values[i] = domain.Int(int64(words))
	}
	out := t.Clone()
	mustSet(&out, domain.NewColumn(domain.RecipeDescriptionLength, domain.ColumnInt, values))
	return out
}
