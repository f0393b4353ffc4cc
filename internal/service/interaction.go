package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// InteractionService manages a user's favorites and shopping cart.
type InteractionService struct {
	db *gorm.DB
}

var _ IInteractionService = (*InteractionService)(nil)

func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

func (s *InteractionService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.add(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID}, ErrAlreadyFavorited)
}

func (s *InteractionService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, &models.Favorite{}, userID, recipeID, ErrNotFavorited)
}

func (s *InteractionService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.add(ctx, &models.Cart{UserID: userID, RecipeID: recipeID}, ErrAlreadyInCart)
}

func (s *InteractionService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, &models.Cart{}, userID, recipeID, ErrNotInCart)
}

// add inserts a Favorite or Cart row. The existing-pair check runs before the
// recipe lookup, so a duplicate is reported even for a recipe that was deleted.
func (s *InteractionService) add(ctx context.Context, row interface{}, duplicate error) (*models.Recipe, error) {
	var userID, recipeID uint
	switch r := row.(type) {
	case *models.Favorite:
		userID, recipeID = r.UserID, r.RecipeID
	case *models.Cart:
		userID, recipeID = r.UserID, r.RecipeID
	default:
		return nil, fmt.Errorf("unsupported relation %T", row)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check relation: %w", err)
	}
	if count > 0 {
		return nil, duplicate
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := s.db.WithContext(ctx).Omit("User", "Recipe").Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicate
		}
		return nil, fmt.Errorf("failed to create relation: %w", err)
	}
	return &recipe, nil
}

func (s *InteractionService) remove(ctx context.Context, model interface{}, userID, recipeID uint, missing error) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete relation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return missing
	}
	return nil
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by ingredient name and measurement unit.
func (s *InteractionService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	var items []types.ShoppingListItem
	err := s.db.WithContext(ctx).Table("ingredient_amounts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN carts ON carts.recipe_id = ingredient_amounts.recipe_id").
		Where("carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats items one per line as "name (unit) - amount".
func RenderShoppingList(items []types.ShoppingListItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}

// Flags reports which of recipeIDs the user has favorited and put in the cart.
func (s *InteractionService) Flags(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, map[uint]bool, error) {
	favorited := make(map[uint]bool)
	inCart := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	for _, q := range []struct {
		model interface{}
		dest  map[uint]bool
	}{
		{&models.Favorite{}, favorited},
		{&models.Cart{}, inCart},
	} {
		var ids []uint
		err := s.db.WithContext(ctx).Model(q.model).
			Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
			Pluck("recipe_id", &ids).Error
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load recipe flags: %w", err)
		}
		for _, id := range ids {
			q.dest[id] = true
		}
	}
	return favorited, inCart, nil
}
