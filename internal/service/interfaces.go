package service

import (
	"context"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenRevoker stores revoked token ids until their expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IUserService defines account listing and follow operations
type IUserService interface {
	ListUsers(ctx context.Context, page types.Page) ([]models.User, int64, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	ListSubscriptions(ctx context.Context, userID uint, page types.Page) ([]models.User, int64, error)
	SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	AuthorRecipes(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	RecipeCounts(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// ICatalogService defines tag and ingredient operations
type ICatalogService interface {
	ListTags(ctx context.Context, page types.Page) ([]models.Tag, int64, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error)
	UpdateTag(ctx context.Context, id uint, req *types.UpdateTagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uint) error

	ListIngredients(ctx context.Context, namePrefix string, page types.Page) ([]models.Ingredient, int64, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uint, req *types.UpdateIngredientRequest) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uint) error
}

// IRecipeService defines recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, requesterID uint, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, requesterID, id uint, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, requesterID, id uint) error
}

// IInteractionService defines favorites, cart and shopping list operations
type IInteractionService interface {
	AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error)
	Flags(ctx context.Context, userID uint, recipeIDs []uint) (favorited, inCart map[uint]bool, err error)
}
