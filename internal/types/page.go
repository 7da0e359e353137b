package types

// DashboardPage is the data behind the dashboard overview
type DashboardPage struct {
	Cards     CardData
	Cookbooks []Cookbook
}

// RecipesQuery is the listing's URL state
type RecipesQuery struct {
	Query  string
	Status Status
	Page   int
}

// RecipesPage is one page of the filtered recipe listing. Degraded is set
// when a backend failure was replaced by empty data.
type RecipesPage struct {
	RecipesQuery
	TotalPages int
	Recipes    []Recipe
	Cookbooks  CookbookMap
	Degraded   bool
}

// RecipeDetailPage is a single recipe with its cookbook and the user's record.
// UserRecipe is nil when the user has no record for the recipe yet.
type RecipeDetailPage struct {
	Recipe     Recipe
	Cookbook   Cookbook
	UserRecipe *UserRecipe
}

// EditRecipePage carries what the status/rating form needs
type EditRecipePage struct {
	RecipeDetailPage
	Cookbooks []Cookbook
	Form      UserRecipeForm
	State     *FormState
}

// PickerPage is the random recipe picker. Recipes is empty until a count is requested.
type PickerPage struct {
	Count     int
	Recipes   []Recipe
	Cookbooks CookbookMap
}

// CookbookPage lists the recipes of one cookbook
type CookbookPage struct {
	Cookbook Cookbook
	Recipes  []Recipe
}

// UserRecipeForm is the raw status/rating form submission
type UserRecipeForm struct {
	Status string `form:"status" validate:"required,oneof=uncooked cooked!"`
	Rating string `form:"rating" validate:"required,numeric"`
}

// FormState reports a rejected form submission
type FormState struct {
	Errors  map[string][]string
	Message string
}

// HasError reports whether field has a message
func (s *FormState) HasError(field string) bool {
	return s != nil && len(s.Errors[field]) > 0
}
