package types

// Page is a resolved limit/offset window for list queries.
type Page struct {
	Limit  int
	Offset int
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor,len=7"`
	Slug  string `json:"slug" binding:"required,max=200"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Color *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Slug  *string `json:"slug" binding:"omitempty,max=200"`
}

type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

type UpdateIngredientRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=200"`
	MeasurementUnit *string `json:"measurement_unit" binding:"omitempty,max=200"`
}

// IngredientInput is one entry of a recipe's ingredient list.
type IngredientInput struct {
	ID     FlexInt `json:"id"`
	Amount FlexInt `json:"amount"`
}

// RecipeRequest is used for create and update. A nil Ingredients or Tags pointer
// means the key was absent from the payload.
type RecipeRequest struct {
	Name        *string            `json:"name" binding:"omitempty,max=100"`
	Image       *string            `json:"image"`
	Text        *string            `json:"text"`
	CookingTime *FlexInt           `json:"cooking_time"`
	Ingredients *[]IngredientInput `json:"ingredients"`
	Tags        *[]FlexInt         `json:"tags"`
}

// RecipeFilter holds the recipe list query parameters. The membership flags
// only narrow the result when set and the requester is authenticated.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}
