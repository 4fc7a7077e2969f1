package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RecipesCSV is a small raw recipes file in the Food.com layout. The third
// row carries a malformed tags literal, an empty nutrition cell and an
// impossible submission date.
const RecipesCSV = `name,id,minutes,contributor_id,submitted,tags,nutrition,n_steps,steps,description,ingredients,n_ingredients
arriba baked winter squash,137739,55,47892,2005-09-16,"['60-minutes-or-less', 'time-to-make', 'course']","[51.5, 0.0, 13.0, 0.0, 2.0, 0.0, 4.0]",11,"['make a choice', 'cut squash']",autumn is my favorite time of year,"['winter squash', 'mexican seasoning']",2
a bit different breakfast pizza,31490,30,26278,2002-06-17,"['30-minutes-or-less', 'breakfast']","[173.4, 18.0, 0.0, 17.0, 22.0, 35.0, 1.0]",9,"['preheat oven', 'press dough']",,"['prepared pizza crust', 'sausage patty', 'eggs']",3
all in the kitchen chili,112140,130,196586,2019-02-30,not-a-list,,6,[,this modified version,"['ground beef', 'yellow onions']",2
`

// InteractionsCSV is a small interactions file matching RecipesCSV ids
const InteractionsCSV = `user_id,recipe_id,date,rating,review
38094,137739,2003-02-17,4,Great with a salad.
1293707,137739,2011-12-21,5,"So simple, so delicious!"
8937,31490,2002-12-01,4,Very good
`

// WriteFixture writes content to name under dir and returns the full path
func WriteFixture(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteRawDataset writes both raw files into dir and returns their paths
func WriteRawDataset(t *testing.T, dir string) (recipes, interactions string) {
	t.Helper()
	return WriteFixture(t, dir, "RAW_recipes.csv", []byte(RecipesCSV)),
		WriteFixture(t, dir, "RAW_interactions.csv", []byte(InteractionsCSV))
}
