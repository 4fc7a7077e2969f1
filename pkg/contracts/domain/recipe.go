package domain

// Column names of RAW_recipes.csv
const (
	RecipeName         = "name"
	RecipeID           = "id"
	RecipeMinutes      = "minutes"
	RecipeContributor  = "contributor_id"
	RecipeSubmitted    = "submitted"
	RecipeTags         = "tags"
	RecipeNutrition    = "nutrition"
	RecipeNSteps       = "n_steps"
	RecipeSteps        = "steps"
	RecipeDescription  = "description"
	RecipeIngredients  = "ingredients"
	RecipeNIngredients = "n_ingredients"

	// Derived columns
	RecipeDescriptionFilled = "description_filled"
	RecipeDescriptionLength = "description_length"
)

// Column names of RAW_interactions.csv
const (
	InteractionUserID   = "user_id"
	InteractionRecipeID = "recipe_id"
	InteractionDate     = "date"
	InteractionRating   = "rating"
	InteractionReview   = "review"
)

// Names of the seven values packed in the nutrition column, in order
const (
	NutritionCalories      = "calories"
	NutritionTotalFat      = "total_fat"
	NutritionSugar         = "sugar"
	NutritionSodium        = "sodium"
	NutritionProtein       = "protein"
	NutritionSaturatedFat  = "saturated_fat"
	NutritionCarbohydrates = "carbohydrates"
)

// NutritionColumns returns the conventional order of the nutrition vector
func NutritionColumns() []string {
	return []string{
		NutritionCalories,
		NutritionTotalFat,
		NutritionSugar,
		NutritionSodium,
		NutritionProtein,
		NutritionSaturatedFat,
		NutritionCarbohydrates,
	}
}

// ListLikeColumns returns the recipe columns stored as list literals
func ListLikeColumns() []string {
	return []string{RecipeTags, RecipeIngredients, RecipeSteps, RecipeNutrition}
}

// RecipeColumns returns the columns expected in RAW_recipes.csv
func RecipeColumns() []string {
	return []string{
		RecipeName, RecipeID, RecipeMinutes, RecipeContributor, RecipeSubmitted,
		RecipeTags, RecipeNutrition, RecipeNSteps, RecipeSteps, RecipeDescription,
		RecipeIngredients, RecipeNIngredients,
	}
}

// InteractionColumns returns the columns expected in RAW_interactions.csv
func InteractionColumns() []string {
	return []string{InteractionUserID, InteractionRecipeID, InteractionDate, InteractionRating, InteractionReview}
}
