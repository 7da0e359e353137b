package types

// Status is the cooked state of a user recipe
type Status string

const (
	StatusUncooked Status = "uncooked"
	StatusCooked   Status = "cooked!"
)

// Valid reports whether s is one of the two known statuses
func (s Status) Valid() bool {
	return s == StatusUncooked || s == StatusCooked
}

// Label is the human readable badge text
func (s Status) Label() string {
	if s == StatusCooked {
		return "Cooked!"
	}
	return "Not Cooked"
}

// Cookbook is a named source book keyed by a stable short identifier
type Cookbook struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// CookbookMap looks up cookbooks by key
type CookbookMap map[string]Cookbook

// NewCookbookMap indexes cookbooks by key. A later duplicate key replaces an earlier one.
func NewCookbookMap(cookbooks []Cookbook) CookbookMap {
	m := make(CookbookMap, len(cookbooks))
	for _, cookbook := range cookbooks {
		m[cookbook.Key] = cookbook
	}
	return m
}

// Lookup returns the cookbook for key. Unknown keys resolve to a placeholder
// named after the key so a page can still render.
func (m CookbookMap) Lookup(key string) Cookbook {
	if cookbook, ok := m[key]; ok {
		return cookbook
	}
	return Cookbook{Key: key, Name: key}
}

// IngredientList groups a recipe's ingredients by shopping category
type IngredientList struct {
	Meat           []string `json:"meat"`
	Produce        []string `json:"produce"`
	Seafood        []string `json:"seafood"`
	Pantry         []string `json:"pantry"`
	Dairy          []string `json:"dairy"`
	SeafoodAndMeat []string `json:"seafood_and_meat"`
	Frozen         []string `json:"frozen"`
	Other          []string `json:"other"`
}

// IngredientCategory is one non-empty category of an IngredientList
type IngredientCategory struct {
	Name  string
	Items []string
}

// Categories returns the non-empty categories in display order
func (l IngredientList) Categories() []IngredientCategory {
	all := []IngredientCategory{
		{Name: "Meat", Items: l.Meat},
		{Name: "Produce", Items: l.Produce},
		{Name: "Seafood", Items: l.Seafood},
		{Name: "Pantry", Items: l.Pantry},
		{Name: "Dairy", Items: l.Dairy},
		{Name: "Seafood and meat", Items: l.SeafoodAndMeat},
		{Name: "Frozen", Items: l.Frozen},
		{Name: "Other", Items: l.Other},
	}
	out := make([]IngredientCategory, 0, len(all))
	for _, c := range all {
		if len(c.Items) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// InstructionStep is one step of a recipe
type InstructionStep struct {
	Step    string   `json:"step"`
	Details []string `json:"details"`
}

// Recipe is a dish entry belonging to one cookbook
type Recipe struct {
	ID           string            `json:"_id"`
	NameOfDish   string            `json:"name_of_dish"`
	ServingSize  string            `json:"serving_size"`
	PageNumber   int               `json:"page_number"`
	CookbookKey  string            `json:"cookbook_key"`
	Ingredients  IngredientList    `json:"ingredients"`
	Instructions []InstructionStep `json:"instructions"`
	Note         string            `json:"note,omitempty"`
	UserRecipe   *UserRecipe       `json:"user_recipe,omitempty"`
}

// Status returns the user's status for the recipe when the backend embedded
// it, and uncooked otherwise.
func (r Recipe) Status() Status {
	if r.UserRecipe != nil && r.UserRecipe.Status.Valid() {
		return r.UserRecipe.Status
	}
	return StatusUncooked
}

// Rating returns the embedded user rating, or zero
func (r Recipe) Rating() float64 {
	if r.UserRecipe != nil {
		return r.UserRecipe.Rating
	}
	return 0
}

// UserRecipe is a per-user record of having cooked a given recipe
type UserRecipe struct {
	ID          string    `json:"_id"`
	CookbookKey string    `json:"cookbook_key"`
	RecipeID    string    `json:"recipe_id"`
	UserID      string    `json:"user_id"`
	Status      Status    `json:"status"`
	Rating      float64   `json:"rating"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
	Note        string    `json:"note,omitempty"`
}

// UserRecipeUpdate is the body of the status/rating update
type UserRecipeUpdate struct {
	Status Status  `json:"status"`
	Rating float64 `json:"rating"`
}

// CardData holds the aggregate counts shown on the dashboard
type CardData struct {
	NumberOfCookbooks int
	NumberOfRecipes   int
}
