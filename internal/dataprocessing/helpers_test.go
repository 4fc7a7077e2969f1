package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// mustTable builds a table from raw columns
func mustTable(t *testing.T, cols ...domain.Column) domain.Table {
	t.Helper()
	tbl, err := domain.NewTable(cols...)
	require.NoError(t, err)
	return tbl
}

func rawColumn(name string, values ...domain.Value) domain.Column {
	return domain.NewColumn(name, domain.ColumnRaw, values)
}

func strs(values ...string) []domain.Value {
	out := make([]domain.Value, len(values))
	for i, s := range values {
		out[i] = domain.String(s)
	}
	return out
}

// rawRecipes mimics RAW_recipes.csv as the loader returns it: every field a
// string, empty fields absent.
func rawRecipes(t *testing.T) domain.Table {
	t.Helper()
	return mustTable(t,
		rawColumn(domain.RecipeName, strs("arriba baked winter squash", "a bit different breakfast pizza", "broken")...),
		rawColumn(domain.RecipeID, strs("137739", "31490", "1")...),
		rawColumn(domain.RecipeMinutes, strs("55", "30", "5")...),
		rawColumn(domain.RecipeContributor, strs("47892", "26278", "47892")...),
		rawColumn(domain.RecipeSubmitted, strs("2005-09-16", "2002-06-17", "2019-02-30")...),
		rawColumn(domain.RecipeTags,
			domain.String("['60-minutes-or-less', 'time-to-make', 'course']"),
			domain.String("['30-minutes-or-less', 'breakfast']"),
			domain.String("not-a-list")),
		rawColumn(domain.RecipeNutrition,
			domain.String("[51.5, 0.0, 13.0, 0.0, 2.0, 0.0, 4.0]"),
			domain.String("[173.4, 18.0, 0.0, 17.0, 22.0, 35.0, 1.0]"),
			domain.Absent()),
		rawColumn(domain.RecipeNSteps, strs("11", "9", "1")...),
		rawColumn(domain.RecipeSteps,
			domain.String("['make a choice and proceed with recipe', 'cut squash']"),
			domain.String("['preheat oven to 425 degrees f']"),
			domain.String("[")),
		rawColumn(domain.RecipeDescription,
			domain.String("autumn is my favorite time of year to cook!"),
			domain.String("this recipe calls for the crust to be prebaked a bit"),
			domain.Absent()),
		rawColumn(domain.RecipeIngredients,
			domain.String("['winter squash', 'mexican seasoning']"),
			domain.String("['prepared pizza crust', 'sausage patty']"),
			domain.Absent()),
		rawColumn(domain.RecipeNIngredients, strs("7", "6", "1")...),
	)
}
